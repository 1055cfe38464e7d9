package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/internal/dataset/datasettest"
	"github.com/jengzang/bikeshare-insights/internal/models"
)

type fixedSource struct {
	tables *dataset.Tables
	err    error
}

func (f fixedSource) Snapshot() (*dataset.Tables, error) {
	return f.tables, f.err
}

type viewRecorder struct {
	mu    sync.Mutex
	views map[string][]error
}

func (r *viewRecorder) ObserveView(view string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.views == nil {
		r.views = make(map[string][]error)
	}
	r.views[view] = append(r.views[view], err)
}

func tempRange(lo, hi float64) models.TempSelection {
	return models.TempSelection{Min: &lo, Max: &hi}
}

func newService(opts Options) (*DashboardService, *viewRecorder) {
	rec := &viewRecorder{}
	return NewDashboardService(fixedSource{tables: datasettest.Sample()}, rec, opts), rec
}

func TestUsageHeatmap(t *testing.T) {
	svc, rec := newService(Options{})

	view, err := svc.UsageHeatmap(context.Background(), models.Selection{Season: "Spring", Weather: "Clear"})
	require.NoError(t, err)

	assert.Equal(t, []models.HourlyAverage{{Season: 1, Weathersit: 1, Hour: 8, AvgRentals: 150}}, view.Averages)
	assert.Equal(t, []string{"Spring - Clear"}, view.Heatmap.RowLabels)
	assert.Equal(t, 150.0, *view.Heatmap.Values[0][8])
	assert.Equal(t, []error{nil}, rec.views[ViewHeatmap])
}

func TestUsageHeatmapDefaultsToAll(t *testing.T) {
	svc, _ := newService(Options{})

	view, err := svc.UsageHeatmap(context.Background(), models.Selection{})
	require.NoError(t, err)
	assert.Equal(t, models.Selection{Season: "All", Weather: "All"}, view.Selection)
	assert.Len(t, view.Averages, 6)
}

func TestUsageHeatmapUnknownLabel(t *testing.T) {
	svc, rec := newService(Options{})

	_, err := svc.UsageHeatmap(context.Background(), models.Selection{Season: "Monsoon"})
	assert.True(t, errors.Is(err, apperror.ErrLookup))
	require.Len(t, rec.views[ViewHeatmap], 1)
	assert.Error(t, rec.views[ViewHeatmap][0])
}

func TestTemperatureScatter(t *testing.T) {
	svc, _ := newService(Options{})
	ctx := context.Background()

	all, err := svc.TemperatureScatter(ctx, models.Selection{}, models.TempSelection{})
	require.NoError(t, err)
	assert.Len(t, all.Points, 7)
	assert.Equal(t, models.TempRange{Min: 0.10, Max: 0.80}, all.Range)
	assert.Equal(t, dataset.ColWeatherCondition, all.ColorBy)
	assert.Nil(t, all.Backdrop)

	summer, err := svc.TemperatureScatter(ctx, models.Selection{Season: "Summer"}, tempRange(0.5, 0.6))
	require.NoError(t, err)
	assert.Len(t, summer.Points, 2)

	inverted, err := svc.TemperatureScatter(ctx, models.Selection{}, tempRange(0.6, 0.5))
	require.NoError(t, err)
	assert.Empty(t, inverted.Points)

	lo := 0.5
	warm, err := svc.TemperatureScatter(ctx, models.Selection{}, models.TempSelection{Min: &lo})
	require.NoError(t, err)
	assert.Equal(t, models.TempRange{Min: 0.5, Max: 0.80}, warm.Range)
	assert.Len(t, warm.Points, 3)
}

func TestTemperatureScatterBackdrop(t *testing.T) {
	svc, _ := newService(Options{ShowBackdrop: true})

	view, err := svc.TemperatureScatter(context.Background(), models.Selection{Season: "Winter"}, models.TempSelection{})
	require.NoError(t, err)
	assert.Len(t, view.Points, 1)
	assert.Len(t, view.Backdrop, 7)
}

func TestUserTypes(t *testing.T) {
	svc, _ := newService(Options{})
	ctx := context.Background()

	all, err := svc.UserTypes(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"weekday", "weekend", "holiday"}, all.DayTypes)
	assert.Len(t, all.Bars, 6)

	none, err := svc.UserTypes(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, none.Bars)
	assert.NotNil(t, none.DayTypes)

	weekend, err := svc.UserTypes(ctx, []string{"weekend"})
	require.NoError(t, err)
	require.Len(t, weekend.Bars, 2)
	assert.Equal(t, 900.0, weekend.Bars[0].MeanRentals)
}

func TestCorrelation(t *testing.T) {
	svc, _ := newService(Options{})
	ctx := context.Background()

	m, err := svc.Correlation(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{dataset.ColCount, "temp", "hum"}, m.Columns)

	_, err = svc.Correlation(ctx, []string{dataset.ColDayType})
	assert.True(t, errors.Is(err, apperror.ErrType))
	assert.True(t, apperror.IsUserError(err))
}

func TestSegments(t *testing.T) {
	svc, _ := newService(Options{})
	ctx := context.Background()

	all, err := svc.Segments(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "All", all.Segment)
	assert.Len(t, all.Counts, 4)

	champions, err := svc.Segments(ctx, "Champions")
	require.NoError(t, err)
	assert.Equal(t, []models.SegmentCount{
		{Segment: "Champions", UserType: "registered", Count: 2},
		{Segment: "Champions", UserType: "casual", Count: 1},
	}, champions.Counts)
}

func TestSummaryFormatsNumbers(t *testing.T) {
	svc, _ := newService(Options{})

	view, err := svc.Summary(context.Background(), models.Selection{}, models.TempSelection{})
	require.NoError(t, err)
	assert.Equal(t, 1460, view.Summary.TotalRentals)
	assert.Equal(t, "1,460", view.Summary.TotalDisplay)
	assert.Equal(t, "208.6", view.Summary.MeanDisplay)

	empty, err := svc.Summary(context.Background(), models.Selection{Season: "Fall", Weather: "Cloudy"}, models.TempSelection{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Summary.Rows)
	assert.Equal(t, "0", empty.Summary.TotalDisplay)
	assert.Empty(t, empty.Summary.MeanDisplay)
}

func TestControls(t *testing.T) {
	svc, _ := newService(Options{})

	controls, err := svc.Controls(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Spring", "Summer", "Fall", "Winter"}, controls.Seasons)
	assert.Equal(t, []string{"All", "Clear", "Cloudy", "Light Rain/Snow", "Heavy Rain/Snow"}, controls.Weathers)
	assert.Equal(t, models.TempRange{Min: 0.10, Max: 0.80}, controls.TempRange)
	assert.Equal(t, []string{"weekday", "weekend", "holiday"}, controls.DayTypes)
	assert.Equal(t, []string{dataset.ColCount, "temp", "hum"}, controls.NumericColumns)
	assert.Equal(t, []string{"All", "Champions", "At Risk", "Loyal"}, controls.Segments)
	assert.Equal(t, "fixture", controls.Source)
}

func TestDashboardIsolatesFailures(t *testing.T) {
	svc, _ := newService(Options{})

	dash := svc.Dashboard(context.Background(), models.DashboardFilter{
		Columns: []string{"temp", dataset.ColDayType},
	})

	require.Len(t, dash.Views, 7)
	assert.NotEmpty(t, dash.Views[ViewCorrelation].Error)
	assert.Nil(t, dash.Views[ViewCorrelation].Data)
	for _, name := range []string{ViewControls, ViewHeatmap, ViewScatter, ViewUserTypes, ViewSegments, ViewSummary} {
		assert.Empty(t, dash.Views[name].Error, name)
		assert.NotNil(t, dash.Views[name].Data, name)
	}
}

func TestSnapshotErrors(t *testing.T) {
	notLoaded := errors.New("datasets not loaded")
	svc := NewDashboardService(fixedSource{err: notLoaded}, nil, Options{})

	_, err := svc.Controls(context.Background())
	assert.ErrorIs(t, err, notLoaded)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc, _ = newService(Options{})
	_, err = svc.Segments(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
