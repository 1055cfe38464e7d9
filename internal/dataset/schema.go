package dataset

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/hashicorp/go-multierror"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
)

// Column names shared by the cleaned datasets
const (
	ColSeason           = "season"
	ColWeather          = "weathersit"
	ColHour             = "hr"
	ColTemp             = "temp"
	ColCount            = "cnt"
	ColWeatherCondition = "weathersit_condition"
	ColDayType          = "day_type"
	ColUserType         = "user_type"
	ColSegment          = "user_segment"
)

// Schema lists the columns a table must carry and the gota types of known columns.
type Schema struct {
	Name     string
	Required []string
	Types    map[string]series.Type
}

var (
	HourlySchema = Schema{
		Name:     "hourly",
		Required: []string{ColSeason, ColWeather, ColHour, ColTemp, ColCount},
		Types: map[string]series.Type{
			ColSeason:           series.Int,
			ColWeather:          series.Int,
			ColHour:             series.Int,
			ColTemp:             series.Float,
			ColCount:            series.Int,
			ColWeatherCondition: series.String,
		},
	}

	DailySchema = Schema{
		Name:     "daily",
		Required: []string{ColDayType, ColUserType, ColCount},
		Types: map[string]series.Type{
			ColDayType:  series.String,
			ColUserType: series.String,
			ColCount:    series.Int,
		},
	}

	SegmentSchema = Schema{
		Name:     "segments",
		Required: []string{ColSegment, ColUserType},
		Types: map[string]series.Type{
			ColSegment:  series.String,
			ColUserType: series.String,
		},
	}
)

// Validate reports every required column df lacks
func (s Schema) Validate(df dataframe.DataFrame) error {
	var result *multierror.Error
	names := columnSet(df)
	for _, col := range s.Required {
		if !names[col] {
			result = multierror.Append(result, apperror.New(apperror.ErrMissingColumn, moduleName,
				"%s table has no column %q", s.Name, col))
		}
	}
	return result.ErrorOrNil()
}

// RequireColumns fails with a MissingColumn error for the first absent column
func RequireColumns(module string, df dataframe.DataFrame, columns ...string) error {
	names := columnSet(df)
	for _, col := range columns {
		if !names[col] {
			return apperror.New(apperror.ErrMissingColumn, module, "column %q not found", col)
		}
	}
	return nil
}

// IsNumeric reports whether a gota column holds numbers
func IsNumeric(s series.Series) bool {
	return s.Type() == series.Int || s.Type() == series.Float
}

// NumericColumns returns the numeric column names of df in table order
func NumericColumns(df dataframe.DataFrame) []string {
	var out []string
	for _, name := range df.Names() {
		if IsNumeric(df.Col(name)) {
			out = append(out, name)
		}
	}
	return out
}

// DistinctStrings returns the distinct present values of column in
// first-seen order
func DistinctStrings(df dataframe.DataFrame, column string) ([]string, error) {
	if err := RequireColumns(moduleName, df, column); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	col := df.Col(column)
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if el.IsNA() {
			continue
		}
		v := el.String()
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func columnSet(df dataframe.DataFrame) map[string]bool {
	names := make(map[string]bool)
	for _, n := range df.Names() {
		names[n] = true
	}
	return names
}
