package models

import "time"

// ScatterPoint is one hourly observation for the temperature scatterplot
type ScatterPoint struct {
	Temp       float64 `json:"temp"`
	Count      int     `json:"cnt"`
	Weathersit int     `json:"weathersit"`
	Weather    string  `json:"weather"` // weathersit_condition when present, else mapped label
}

// TemperatureScatter is the response of the temperature scatter chart
type TemperatureScatter struct {
	Selection Selection      `json:"selection"`
	Range     TempRange      `json:"temp_range"`
	ColorBy   string         `json:"color_by"` // weathersit_condition or weathersit
	Points    []ScatterPoint `json:"points"`
	Backdrop  []ScatterPoint `json:"backdrop,omitempty"` // unfiltered rows, drawn faded
}

// UserTypeBar is the mean daily rental count of one (day_type, user_type) pair
type UserTypeBar struct {
	DayType     string  `json:"day_type"`
	UserType    string  `json:"user_type"`
	MeanRentals float64 `json:"mean_rentals"`
	Days        int     `json:"days"`
}

// UserTypeBars is the response of the user type barplot
type UserTypeBars struct {
	DayTypes []string      `json:"day_types"`
	Bars     []UserTypeBar `json:"bars"`
}

// CorrelationMatrix holds pairwise Pearson coefficients. Undefined
// coefficients are nil.
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// SegmentCount is the number of customers in one (user_segment, user_type) pair
type SegmentCount struct {
	Segment  string `json:"user_segment"`
	UserType string `json:"user_type"`
	Count    int    `json:"count"`
}

// SegmentCounts is the response of the segment countplot
type SegmentCounts struct {
	Segment string         `json:"segment"`
	Counts  []SegmentCount `json:"counts"`
}

// Summary describes the filtered hourly subset
type Summary struct {
	Rows         int           `json:"rows"`
	TotalRentals int           `json:"total_rentals"`
	MeanRentals  *float64      `json:"mean_rentals"`
	TempMin      *float64      `json:"temp_min"`
	TempMax      *float64      `json:"temp_max"`
	Distribution *Distribution `json:"distribution,omitempty"`
	TotalDisplay string        `json:"total_display,omitempty"`
	MeanDisplay  string        `json:"mean_display,omitempty"`
}

// Distribution is the five-number summary of hourly rental counts
type Distribution struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// SummaryView is the response of the summary endpoint
type SummaryView struct {
	Selection Selection `json:"selection"`
	Range     TempRange `json:"temp_range"`
	Summary   Summary   `json:"summary"`
}

// Controls lists the options the front-end offers in its selectors
type Controls struct {
	Seasons        []string  `json:"seasons"`
	Weathers       []string  `json:"weathers"`
	TempRange      TempRange `json:"temp_range"`
	DayTypes       []string  `json:"day_types"`
	NumericColumns []string  `json:"numeric_columns"`
	Segments       []string  `json:"segments"`
	Source         string    `json:"source"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// ViewResult wraps one chart of the combined dashboard. Exactly one of Data
// and Error is set.
type ViewResult struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Dashboard is every chart computed for one set of selections
type Dashboard struct {
	Views       map[string]ViewResult `json:"views"`
	GeneratedAt string                `json:"generated_at"`
}
