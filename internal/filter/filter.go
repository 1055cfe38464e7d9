// Package filter narrows rental tables to the rows matching a chart's
// selections. Every function returns a new DataFrame and leaves its input
// untouched; filters compose by chaining, which gives AND semantics.
package filter

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/jengzang/bikeshare-insights/internal/category"
	"github.com/jengzang/bikeshare-insights/internal/dataset"
)

const moduleName = "filter"

// ByCategory keeps rows whose integer code column equals the code of the
// selected label. category.All returns df unchanged.
func ByCategory(df dataframe.DataFrame, column, selected string, mapping *category.Mapping) (dataframe.DataFrame, error) {
	if err := dataset.RequireColumns(moduleName, df, column); err != nil {
		return dataframe.DataFrame{}, err
	}
	if selected == category.All {
		return df, nil
	}

	code, err := mapping.Code(selected)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	return apply(df, column, func(el series.Element) bool {
		if el.IsNA() {
			return false
		}
		v, err := el.Int()
		return err == nil && v == code
	})
}

// ByRange keeps rows with min <= value <= max. An inverted range is not
// corrected and simply matches nothing.
func ByRange(df dataframe.DataFrame, column string, min, max float64) (dataframe.DataFrame, error) {
	if err := dataset.RequireColumns(moduleName, df, column); err != nil {
		return dataframe.DataFrame{}, err
	}

	return apply(df, column, func(el series.Element) bool {
		if el.IsNA() {
			return false
		}
		v := el.Float()
		return v >= min && v <= max
	})
}

// ByMembership keeps rows whose value is one of allowed. An empty allowed set
// yields an empty table.
func ByMembership(df dataframe.DataFrame, column string, allowed []string) (dataframe.DataFrame, error) {
	if err := dataset.RequireColumns(moduleName, df, column); err != nil {
		return dataframe.DataFrame{}, err
	}

	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}

	return apply(df, column, func(el series.Element) bool {
		if el.IsNA() {
			return false
		}
		_, ok := set[el.String()]
		return ok
	})
}

// ByExactMatch keeps rows whose value equals selected. category.All returns
// df unchanged.
func ByExactMatch(df dataframe.DataFrame, column, selected string) (dataframe.DataFrame, error) {
	if err := dataset.RequireColumns(moduleName, df, column); err != nil {
		return dataframe.DataFrame{}, err
	}
	if selected == category.All {
		return df, nil
	}

	return apply(df, column, func(el series.Element) bool {
		return !el.IsNA() && el.String() == selected
	})
}

func apply(df dataframe.DataFrame, column string, keep func(series.Element) bool) (dataframe.DataFrame, error) {
	out := df.Filter(dataframe.F{
		Colname:    column,
		Comparator: series.CompFunc,
		Comparando: keep,
	})
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}
