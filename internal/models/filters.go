package models

// ChartQuery represents the single-valued query parameters shared by the chart endpoints
type ChartQuery struct {
	Season  string   `form:"season"`   // All, Spring, Summer, Fall, Winter
	Weather string   `form:"weather"`  // All, Clear, Cloudy, Light Rain/Snow, Heavy Rain/Snow
	TempMin *float64 `form:"temp_min"` // Normalized temperature, defaults to observed min
	TempMax *float64 `form:"temp_max"` // Normalized temperature, defaults to observed max
	Segment string   `form:"segment"`  // All or a user_segment value
}

// Selection is the season/weather pair chosen in the sidebar
type Selection struct {
	Season  string `json:"season"`
	Weather string `json:"weather"`
}

// TempRange is an inclusive temperature interval
type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TempSelection is the temperature slider. A nil bound defaults to the
// observed bound of the hourly table.
type TempSelection struct {
	Min *float64
	Max *float64
}

// DashboardFilter carries every selection explicitly. A nil DayTypes or
// Columns means "everything observed"; a non-nil empty slice means none.
type DashboardFilter struct {
	Selection
	Temp     TempSelection
	DayTypes []string
	Columns  []string
	Segment  string
}
