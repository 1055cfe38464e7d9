// Package stats turns filtered rental tables into the series each dashboard
// chart renders.
package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
	"github.com/jengzang/bikeshare-insights/internal/category"
	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/internal/models"
)

const (
	moduleName = "stats"

	// HoursPerDay is the number of heatmap columns
	HoursPerDay = 24
)

// AverageByHourSeasonWeather groups the hourly table by (season, weathersit, hr)
// and returns the mean rental count of every non-empty group, sorted by
// season, then weathersit, then hour.
func AverageByHourSeasonWeather(df dataframe.DataFrame) ([]models.HourlyAverage, error) {
	if err := dataset.RequireColumns(moduleName, df, dataset.ColSeason, dataset.ColWeather, dataset.ColHour, dataset.ColCount); err != nil {
		return nil, err
	}

	groups, err := groupBy(df, dataset.ColSeason, dataset.ColWeather, dataset.ColHour)
	if err != nil {
		return nil, err
	}

	out := make([]models.HourlyAverage, 0, len(groups))
	for _, g := range groups {
		mean, n := meanOf(g.Col(dataset.ColCount))
		if n == 0 {
			continue
		}
		season, err := keyInt(g, dataset.ColSeason)
		if err != nil {
			return nil, err
		}
		weather, err := keyInt(g, dataset.ColWeather)
		if err != nil {
			return nil, err
		}
		hour, err := keyInt(g, dataset.ColHour)
		if err != nil {
			return nil, err
		}
		out = append(out, models.HourlyAverage{
			Season:     season,
			Weathersit: weather,
			Hour:       hour,
			AvgRentals: mean,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.Weathersit != b.Weathersit {
			return a.Weathersit < b.Weathersit
		}
		return a.Hour < b.Hour
	})
	return out, nil
}

// PivotForHeatmap reshapes hourly averages into one row per (season,
// weathersit) pair and one column per hour 0-23. Rows are labelled
// "<Season> - <Weather>" and ordered by code. Missing cells stay nil;
// duplicate entries for the same cell are averaged.
func PivotForHeatmap(averages []models.HourlyAverage) (*models.UsageHeatmap, error) {
	type cell struct {
		sum float64
		n   int
	}
	cells := make(map[models.SeasonWeather]map[int]*cell)
	for _, a := range averages {
		if a.Hour < 0 || a.Hour >= HoursPerDay {
			return nil, apperror.New(apperror.ErrMalformed, moduleName, "hour %d outside 0-%d", a.Hour, HoursPerDay-1)
		}
		key := models.SeasonWeather{Season: a.Season, Weathersit: a.Weathersit}
		row, ok := cells[key]
		if !ok {
			row = make(map[int]*cell)
			cells[key] = row
		}
		c, ok := row[a.Hour]
		if !ok {
			c = &cell{}
			row[a.Hour] = c
		}
		c.sum += a.AvgRentals
		c.n++
	}

	keys := make([]models.SeasonWeather, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Season != keys[j].Season {
			return keys[i].Season < keys[j].Season
		}
		return keys[i].Weathersit < keys[j].Weathersit
	})

	heatmap := &models.UsageHeatmap{
		RowKeys:   keys,
		RowLabels: make([]string, len(keys)),
		Hours:     make([]int, HoursPerDay),
		Values:    make([][]*float64, len(keys)),
	}
	for h := range heatmap.Hours {
		heatmap.Hours[h] = h
	}
	for i, k := range keys {
		label, err := category.CompositeLabel(k.Season, k.Weathersit)
		if err != nil {
			return nil, err
		}
		heatmap.RowLabels[i] = label

		row := make([]*float64, HoursPerDay)
		for h, c := range cells[k] {
			v := c.sum / float64(c.n)
			row[h] = &v
		}
		heatmap.Values[i] = row
	}
	return heatmap, nil
}

// MeanByDayAndUserType averages the daily rental count per (day_type,
// user_type). Bars follow the first-seen order of day types, then user types.
func MeanByDayAndUserType(df dataframe.DataFrame) ([]models.UserTypeBar, error) {
	if err := dataset.RequireColumns(moduleName, df, dataset.ColDayType, dataset.ColUserType, dataset.ColCount); err != nil {
		return nil, err
	}

	groups, err := groupBy(df, dataset.ColDayType, dataset.ColUserType)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserTypeBar, 0, len(groups))
	for _, g := range groups {
		mean, n := meanOf(g.Col(dataset.ColCount))
		if n == 0 {
			continue
		}
		out = append(out, models.UserTypeBar{
			DayType:     g.Col(dataset.ColDayType).Elem(0).String(),
			UserType:    g.Col(dataset.ColUserType).Elem(0).String(),
			MeanRentals: mean,
			Days:        n,
		})
	}

	dayOrder, err := firstSeen(df, dataset.ColDayType)
	if err != nil {
		return nil, err
	}
	userOrder, err := firstSeen(df, dataset.ColUserType)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayType != out[j].DayType {
			return dayOrder[out[i].DayType] < dayOrder[out[j].DayType]
		}
		return userOrder[out[i].UserType] < userOrder[out[j].UserType]
	})
	return out, nil
}

// CountBySegment counts customers per (user_segment, user_type) in
// first-seen order.
func CountBySegment(df dataframe.DataFrame) ([]models.SegmentCount, error) {
	if err := dataset.RequireColumns(moduleName, df, dataset.ColSegment, dataset.ColUserType); err != nil {
		return nil, err
	}

	groups, err := groupBy(df, dataset.ColSegment, dataset.ColUserType)
	if err != nil {
		return nil, err
	}

	out := make([]models.SegmentCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.SegmentCount{
			Segment:  g.Col(dataset.ColSegment).Elem(0).String(),
			UserType: g.Col(dataset.ColUserType).Elem(0).String(),
			Count:    g.Nrow(),
		})
	}

	segOrder, err := firstSeen(df, dataset.ColSegment)
	if err != nil {
		return nil, err
	}
	userOrder, err := firstSeen(df, dataset.ColUserType)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Segment != out[j].Segment {
			return segOrder[out[i].Segment] < segOrder[out[j].Segment]
		}
		return userOrder[out[i].UserType] < userOrder[out[j].UserType]
	})
	return out, nil
}

// ScatterPoints returns one point per hourly row with a temperature and a
// count. Points are coloured by weathersit_condition when the table carries
// it, otherwise by the mapped weathersit label; the chosen column is
// returned alongside.
func ScatterPoints(df dataframe.DataFrame) ([]models.ScatterPoint, string, error) {
	if err := dataset.RequireColumns(moduleName, df, dataset.ColTemp, dataset.ColCount, dataset.ColWeather); err != nil {
		return nil, "", err
	}

	colorBy := dataset.ColWeather
	var conditions series.Series
	if err := dataset.RequireColumns(moduleName, df, dataset.ColWeatherCondition); err == nil {
		colorBy = dataset.ColWeatherCondition
		conditions = df.Col(dataset.ColWeatherCondition)
	}

	temps := df.Col(dataset.ColTemp)
	counts := df.Col(dataset.ColCount)
	weathers := df.Col(dataset.ColWeather)

	points := make([]models.ScatterPoint, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		if temps.Elem(i).IsNA() || counts.Elem(i).IsNA() {
			continue
		}
		cnt, err := counts.Elem(i).Int()
		if err != nil {
			return nil, "", apperror.Wrap(apperror.ErrType, moduleName, err, "row %d: cnt is not an integer", i)
		}
		p := models.ScatterPoint{Temp: temps.Elem(i).Float(), Count: cnt}

		if code, err := weathers.Elem(i).Int(); err == nil {
			p.Weathersit = code
			if label, err := category.Weather.Label(code); err == nil {
				p.Weather = label
			} else {
				p.Weather = fmt.Sprint(code)
			}
		}
		if colorBy == dataset.ColWeatherCondition && !conditions.Elem(i).IsNA() {
			p.Weather = conditions.Elem(i).String()
		}
		points = append(points, p)
	}
	return points, colorBy, nil
}

// groupBy splits df into one frame per distinct key tuple, in first-seen
// order. Rows with a missing key are dropped. The key is the tuple of quoted
// values, so "At_Risk","casual" and "At","Risk_casual" stay apart.
func groupBy(df dataframe.DataFrame, columns ...string) ([]dataframe.DataFrame, error) {
	keys := make([]series.Series, len(columns))
	for i, col := range columns {
		keys[i] = df.Col(col)
	}

	index := make(map[string]int)
	var rows [][]int
	var key strings.Builder
	for r := 0; r < df.Nrow(); r++ {
		key.Reset()
		missing := false
		for _, s := range keys {
			el := s.Elem(r)
			if el.IsNA() {
				missing = true
				break
			}
			key.WriteString(strconv.Quote(el.String()))
		}
		if missing {
			continue
		}
		i, ok := index[key.String()]
		if !ok {
			i = len(rows)
			index[key.String()] = i
			rows = append(rows, nil)
		}
		rows[i] = append(rows[i], r)
	}

	out := make([]dataframe.DataFrame, 0, len(rows))
	for _, idx := range rows {
		g := df.Subset(idx)
		if g.Err != nil {
			return nil, apperror.Wrap(apperror.ErrMalformed, moduleName, g.Err, "building group %v", columns)
		}
		out = append(out, g)
	}
	return out, nil
}

// keyInt reads an integer group key
func keyInt(g dataframe.DataFrame, column string) (int, error) {
	v, err := g.Col(column).Elem(0).Int()
	if err != nil {
		return 0, apperror.Wrap(apperror.ErrType, moduleName, err, "column %q is not an integer code", column)
	}
	return v, nil
}

// meanOf averages the non-missing values of s
func meanOf(s series.Series) (float64, int) {
	values := present(s)
	if len(values) == 0 {
		return 0, 0
	}
	return stat.Mean(values, nil), len(values)
}

// present returns the non-missing values of a numeric series
func present(s series.Series) []float64 {
	values := make([]float64, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			continue
		}
		values = append(values, el.Float())
	}
	return values
}

func firstSeen(df dataframe.DataFrame, column string) (map[string]int, error) {
	values, err := dataset.DistinctStrings(df, column)
	if err != nil {
		return nil, err
	}
	order := make(map[string]int, len(values))
	for i, v := range values {
		order[v] = i
	}
	return order, nil
}
