// Package dataset loads the cleaned hourly, daily and segment tables into
// immutable gota DataFrames.
package dataset

import (
	"context"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/hashicorp/go-multierror"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
)

const moduleName = "dataset"

// NAValue is how a missing value is spelled in records passed to gota
const NAValue = "NaN"

// Tables is one consistent snapshot of the three datasets. It is never
// mutated after construction.
type Tables struct {
	Hourly   dataframe.DataFrame
	Daily    dataframe.DataFrame
	Segments dataframe.DataFrame
	Source   string
	LoadedAt time.Time
}

// Loader produces a fresh snapshot
type Loader interface {
	Load(ctx context.Context) (*Tables, error)
	Describe() string
}

// FromRecords builds a DataFrame from a header row plus data rows, typing the
// columns schema knows about. Required columns are checked by the loaders.
func FromRecords(schema Schema, records [][]string) (dataframe.DataFrame, error) {
	if len(records) < 2 {
		return dataframe.DataFrame{}, apperror.New(apperror.ErrMalformed, moduleName,
			"%s table has no data rows", schema.Name)
	}
	df := dataframe.LoadRecords(records, loadOptions(schema)...)
	if df.Err != nil {
		return dataframe.DataFrame{}, apperror.Wrap(apperror.ErrMalformed, moduleName, df.Err,
			"parse %s table", schema.Name)
	}
	return df, nil
}

// loadOptions types the columns schema knows about; gota ignores entries for
// columns a file does not have and detects the rest.
func loadOptions(schema Schema) []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.WithTypes(schema.Types),
		dataframe.NaNValues([]string{"", "NA", NAValue, "<nil>"}),
	}
}

// newTables validates the three frames together so a single load reports
// every schema problem at once.
func newTables(source string, hourly, daily, segments dataframe.DataFrame) (*Tables, error) {
	var result *multierror.Error
	for _, check := range []struct {
		schema Schema
		df     dataframe.DataFrame
	}{
		{HourlySchema, hourly},
		{DailySchema, daily},
		{SegmentSchema, segments},
	} {
		if err := check.schema.Validate(check.df); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &Tables{
		Hourly:   hourly,
		Daily:    daily,
		Segments: segments,
		Source:   source,
		LoadedAt: time.Now(),
	}, nil
}
