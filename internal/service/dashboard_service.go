package service

import (
	"context"
	"time"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jengzang/bikeshare-insights/internal/category"
	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/internal/filter"
	"github.com/jengzang/bikeshare-insights/internal/models"
	"github.com/jengzang/bikeshare-insights/internal/stats"
)

// View names used in metrics and in the combined dashboard
const (
	ViewControls    = "controls"
	ViewHeatmap     = "usage_heatmap"
	ViewScatter     = "temperature_scatter"
	ViewUserTypes   = "user_types"
	ViewCorrelation = "correlation"
	ViewSegments    = "segments"
	ViewSummary     = "summary"
)

// SnapshotSource provides the current dataset snapshot
type SnapshotSource interface {
	Snapshot() (*dataset.Tables, error)
}

// ViewObserver records the outcome of each computed view
type ViewObserver interface {
	ObserveView(view string, elapsed time.Duration, err error)
}

// Options tunes DashboardService
type Options struct {
	ShowBackdrop bool
	Language     language.Tag
}

// DashboardService runs the filter and aggregation pipeline for each chart
type DashboardService struct {
	source   SnapshotSource
	observer ViewObserver
	backdrop bool
	printer  *message.Printer
}

// NewDashboardService creates a new dashboard service. observer may be nil.
func NewDashboardService(source SnapshotSource, observer ViewObserver, opts Options) *DashboardService {
	tag := opts.Language
	if tag == language.Und {
		tag = language.English
	}
	return &DashboardService{
		source:   source,
		observer: observer,
		backdrop: opts.ShowBackdrop,
		printer:  message.NewPrinter(tag),
	}
}

// Controls lists the selector options for the current snapshot
func (s *DashboardService) Controls(ctx context.Context) (result *models.Controls, err error) {
	defer s.observe(ViewControls, time.Now(), &err)

	tables, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	bounds, _, err := stats.TempBounds(tables.Hourly)
	if err != nil {
		return nil, err
	}
	dayTypes, err := dataset.DistinctStrings(tables.Daily, dataset.ColDayType)
	if err != nil {
		return nil, err
	}
	segments, err := dataset.DistinctStrings(tables.Segments, dataset.ColSegment)
	if err != nil {
		return nil, err
	}

	return &models.Controls{
		Seasons:        category.Season.Options(),
		Weathers:       category.Weather.Options(),
		TempRange:      bounds,
		DayTypes:       nonNil(dayTypes),
		NumericColumns: nonNil(dataset.NumericColumns(tables.Daily)),
		Segments:       append([]string{category.All}, segments...),
		Source:         tables.Source,
		LoadedAt:       tables.LoadedAt,
	}, nil
}

// UsageHeatmap averages hourly rentals per (season, weather, hour) for the
// selection and pivots them into the heatmap matrix
func (s *DashboardService) UsageHeatmap(ctx context.Context, sel models.Selection) (result *models.UsageHeatmapView, err error) {
	defer s.observe(ViewHeatmap, time.Now(), &err)

	tables, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sel = normalize(sel)

	hourly, err := bySelection(tables.Hourly, sel)
	if err != nil {
		return nil, err
	}
	averages, err := stats.AverageByHourSeasonWeather(hourly)
	if err != nil {
		return nil, err
	}
	heatmap, err := stats.PivotForHeatmap(averages)
	if err != nil {
		return nil, err
	}

	return &models.UsageHeatmapView{
		Selection: sel,
		Averages:  averages,
		Heatmap:   heatmap,
	}, nil
}

// TemperatureScatter returns the hourly points matching the selection and
// temperature range. Unset bounds use the observed ones.
func (s *DashboardService) TemperatureScatter(ctx context.Context, sel models.Selection, temp models.TempSelection) (result *models.TemperatureScatter, err error) {
	defer s.observe(ViewScatter, time.Now(), &err)

	tables, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sel = normalize(sel)

	hourly, rng, err := byTemperature(tables.Hourly, sel, temp)
	if err != nil {
		return nil, err
	}
	points, colorBy, err := stats.ScatterPoints(hourly)
	if err != nil {
		return nil, err
	}

	view := &models.TemperatureScatter{
		Selection: sel,
		Range:     rng,
		ColorBy:   colorBy,
		Points:    points,
	}
	if s.backdrop {
		backdrop, _, err := stats.ScatterPoints(tables.Hourly)
		if err != nil {
			return nil, err
		}
		view.Backdrop = backdrop
	}
	return view, nil
}

// UserTypes averages daily rentals per day type and user type. A nil
// dayTypes selects every observed day type; an empty one selects none.
func (s *DashboardService) UserTypes(ctx context.Context, dayTypes []string) (result *models.UserTypeBars, err error) {
	defer s.observe(ViewUserTypes, time.Now(), &err)

	tables, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if dayTypes == nil {
		if dayTypes, err = dataset.DistinctStrings(tables.Daily, dataset.ColDayType); err != nil {
			return nil, err
		}
	}

	daily, err := filter.ByMembership(tables.Daily, dataset.ColDayType, dayTypes)
	if err != nil {
		return nil, err
	}
	bars, err := stats.MeanByDayAndUserType(daily)
	if err != nil {
		return nil, err
	}

	return &models.UserTypeBars{DayTypes: nonNil(dayTypes), Bars: bars}, nil
}

// Correlation computes the correlation matrix of the daily table. A nil
// columns selects every numeric column.
func (s *DashboardService) Correlation(ctx context.Context, columns []string) (result *models.CorrelationMatrix, err error) {
	defer s.observe(ViewCorrelation, time.Now(), &err)

	tables, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = dataset.NumericColumns(tables.Daily)
	}
	return stats.CorrelationMatrix(tables.Daily, columns)
}

// Segments counts customers per segment and user type
func (s *DashboardService) Segments(ctx context.Context, segment string) (result *models.SegmentCounts, err error) {
	defer s.observe(ViewSegments, time.Now(), &err)

	tables, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if segment == "" {
		segment = category.All
	}

	df, err := filter.ByExactMatch(tables.Segments, dataset.ColSegment, segment)
	if err != nil {
		return nil, err
	}
	counts, err := stats.CountBySegment(df)
	if err != nil {
		return nil, err
	}
	return &models.SegmentCounts{Segment: segment, Counts: counts}, nil
}

// Summary describes the hourly rows behind the scatterplot
func (s *DashboardService) Summary(ctx context.Context, sel models.Selection, temp models.TempSelection) (result *models.SummaryView, err error) {
	defer s.observe(ViewSummary, time.Now(), &err)

	tables, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sel = normalize(sel)

	hourly, rng, err := byTemperature(tables.Hourly, sel, temp)
	if err != nil {
		return nil, err
	}
	summary, err := stats.Summarize(hourly)
	if err != nil {
		return nil, err
	}

	summary.TotalDisplay = s.printer.Sprintf("%d", summary.TotalRentals)
	if summary.MeanRentals != nil {
		summary.MeanDisplay = s.printer.Sprintf("%.1f", *summary.MeanRentals)
	}
	return &models.SummaryView{Selection: sel, Range: rng, Summary: summary}, nil
}

// Dashboard computes every view for one filter. A failing view carries its
// error and does not affect the others.
func (s *DashboardService) Dashboard(ctx context.Context, f models.DashboardFilter) *models.Dashboard {
	views := make(map[string]models.ViewResult, 7)
	record := func(name string, data interface{}, err error) {
		if err != nil {
			views[name] = models.ViewResult{Error: err.Error()}
			return
		}
		views[name] = models.ViewResult{Data: data}
	}

	controls, err := s.Controls(ctx)
	record(ViewControls, controls, err)
	heatmap, err := s.UsageHeatmap(ctx, f.Selection)
	record(ViewHeatmap, heatmap, err)
	scatter, err := s.TemperatureScatter(ctx, f.Selection, f.Temp)
	record(ViewScatter, scatter, err)
	bars, err := s.UserTypes(ctx, f.DayTypes)
	record(ViewUserTypes, bars, err)
	corr, err := s.Correlation(ctx, f.Columns)
	record(ViewCorrelation, corr, err)
	segments, err := s.Segments(ctx, f.Segment)
	record(ViewSegments, segments, err)
	summary, err := s.Summary(ctx, f.Selection, f.Temp)
	record(ViewSummary, summary, err)

	return &models.Dashboard{
		Views:       views,
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
}

func (s *DashboardService) snapshot(ctx context.Context) (*dataset.Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.source.Snapshot()
}

func (s *DashboardService) observe(view string, start time.Time, err *error) {
	if s.observer != nil {
		s.observer.ObserveView(view, time.Since(start), *err)
	}
}

// bySelection applies the season and weather filters
func bySelection(hourly dataframe.DataFrame, sel models.Selection) (dataframe.DataFrame, error) {
	df, err := filter.ByCategory(hourly, dataset.ColSeason, sel.Season, category.Season)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return filter.ByCategory(df, dataset.ColWeather, sel.Weather, category.Weather)
}

// byTemperature applies the selection, then the temperature range. Unset
// bounds default to the observed bounds of the unfiltered table.
func byTemperature(hourly dataframe.DataFrame, sel models.Selection, temp models.TempSelection) (dataframe.DataFrame, models.TempRange, error) {
	rng, _, err := stats.TempBounds(hourly)
	if err != nil {
		return dataframe.DataFrame{}, rng, err
	}
	if temp.Min != nil {
		rng.Min = *temp.Min
	}
	if temp.Max != nil {
		rng.Max = *temp.Max
	}

	df, err := bySelection(hourly, sel)
	if err != nil {
		return dataframe.DataFrame{}, rng, err
	}
	df, err = filter.ByRange(df, dataset.ColTemp, rng.Min, rng.Max)
	if err != nil {
		return dataframe.DataFrame{}, rng, err
	}
	return df, rng, nil
}

func normalize(sel models.Selection) models.Selection {
	if sel.Season == "" {
		sel.Season = category.All
	}
	if sel.Weather == "" {
		sel.Weather = category.All
	}
	return sel
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
