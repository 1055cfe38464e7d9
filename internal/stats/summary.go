package stats

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/internal/models"
)

// Summarize describes a filtered hourly table: row count, rental total and
// mean, the temperature span and the distribution of hourly counts.
// Fields that are undefined for an empty table stay nil.
func Summarize(df dataframe.DataFrame) (models.Summary, error) {
	if err := dataset.RequireColumns(moduleName, df, dataset.ColCount, dataset.ColTemp); err != nil {
		return models.Summary{}, err
	}

	summary := models.Summary{Rows: df.Nrow()}

	counts := present(df.Col(dataset.ColCount))
	if len(counts) > 0 {
		summary.TotalRentals = int(floats.Sum(counts))
		mean := stat.Mean(counts, nil)
		summary.MeanRentals = &mean
		summary.Distribution = FiveNumberSummary(counts)
	}

	bounds, ok, err := TempBounds(df)
	if err != nil {
		return models.Summary{}, err
	}
	if ok {
		summary.TempMin = &bounds.Min
		summary.TempMax = &bounds.Max
	}
	return summary, nil
}

// FiveNumberSummary returns min, quartiles and max, or nil for no values
func FiveNumberSummary(values []float64) *models.Distribution {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return &models.Distribution{
		Min:    sorted[0],
		Q1:     quantileSorted(sorted, 0.25),
		Median: quantileSorted(sorted, 0.5),
		Q3:     quantileSorted(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// Quantile returns the q-th quantile (0-1) using linear interpolation
// between closest ranks
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	// Linear interpolation
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// TempBounds returns the observed temperature span of df. ok is false when
// no temperature is present.
func TempBounds(df dataframe.DataFrame) (models.TempRange, bool, error) {
	if err := dataset.RequireColumns(moduleName, df, dataset.ColTemp); err != nil {
		return models.TempRange{}, false, err
	}
	temps := present(df.Col(dataset.ColTemp))
	if len(temps) == 0 {
		return models.TempRange{}, false, nil
	}
	lo, hi := temps[0], temps[0]
	for _, t := range temps[1:] {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	return models.TempRange{Min: lo, Max: hi}, true, nil
}
