package stats

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/internal/models"
)

// CorrelationMatrix computes pairwise Pearson coefficients between the
// given numeric columns, in the order given. Each pair uses the rows where
// both values are present. The diagonal is 1 and the matrix is symmetric.
// A coefficient that is undefined (fewer than two rows, zero variance) is
// reported as nil.
func CorrelationMatrix(df dataframe.DataFrame, columns []string) (*models.CorrelationMatrix, error) {
	if len(columns) == 0 {
		return nil, apperror.New(apperror.ErrInvalidInput, moduleName, "no columns selected for correlation")
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col] {
			return nil, apperror.New(apperror.ErrInvalidInput, moduleName, "column %q selected twice", col)
		}
		seen[col] = true
	}
	if err := dataset.RequireColumns(moduleName, df, columns...); err != nil {
		return nil, err
	}

	data := make([][]float64, len(columns))
	for i, col := range columns {
		s := df.Col(col)
		if !dataset.IsNumeric(s) {
			return nil, apperror.New(apperror.ErrType, moduleName, "column %q is %s, not numeric", col, s.Type())
		}
		data[i] = s.Float()
	}

	k := len(columns)
	coef := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		coef.SetSym(i, i, 1)
		for j := i + 1; j < k; j++ {
			coef.SetSym(i, j, pearson(data[i], data[j]))
		}
	}

	out := &models.CorrelationMatrix{
		Columns: append([]string(nil), columns...),
		Values:  make([][]*float64, k),
	}
	for i := 0; i < k; i++ {
		row := make([]*float64, k)
		for j := 0; j < k; j++ {
			v := coef.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			row[j] = &v
		}
		out.Values[i] = row
	}
	return out, nil
}

// pearson correlates x and y over the rows where both are present
func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	return math.Max(-1, math.Min(1, r))
}
