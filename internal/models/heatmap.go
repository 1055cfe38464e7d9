package models

// HourlyAverage is the mean rental count of one (season, weathersit, hr) group
type HourlyAverage struct {
	Season     int     `json:"season"`
	Weathersit int     `json:"weathersit"`
	Hour       int     `json:"hr"`
	AvgRentals float64 `json:"avg_rentals"`
}

// SeasonWeather identifies one heatmap row
type SeasonWeather struct {
	Season     int `json:"season"`
	Weathersit int `json:"weathersit"`
}

// UsageHeatmap is the hour-by-(season, weather) matrix. Values[i][h] is nil
// when no rows exist for row i at hour Hours[h].
type UsageHeatmap struct {
	RowKeys   []SeasonWeather `json:"row_keys"`
	RowLabels []string        `json:"row_labels"`
	Hours     []int           `json:"hours"`
	Values    [][]*float64    `json:"values"`
}

// UsageHeatmapView is the response of the usage heatmap chart
type UsageHeatmapView struct {
	Selection Selection       `json:"selection"`
	Averages  []HourlyAverage `json:"averages"`
	Heatmap   *UsageHeatmap   `json:"heatmap"`
}
