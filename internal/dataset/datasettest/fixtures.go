// Package datasettest builds small in-memory rental tables for tests.
package datasettest

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/jengzang/bikeshare-insights/internal/dataset"
)

// Hour is one hourly row
type Hour struct {
	Season    int
	Weather   int
	Hr        int
	Temp      float64
	Cnt       int
	Condition string
}

// Day is one daily row
type Day struct {
	DayType  string
	UserType string
	Cnt      int
	Temp     float64
	Hum      float64
}

// Segment is one segmentation row
type Segment struct {
	Segment  string
	UserType string
}

// HourlyFrame builds an hourly table with a weathersit_condition column
func HourlyFrame(rows ...Hour) dataframe.DataFrame {
	records := [][]string{{
		dataset.ColSeason, dataset.ColWeather, dataset.ColHour,
		dataset.ColTemp, dataset.ColCount, dataset.ColWeatherCondition,
	}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Season),
			strconv.Itoa(r.Weather),
			strconv.Itoa(r.Hr),
			strconv.FormatFloat(r.Temp, 'f', -1, 64),
			strconv.Itoa(r.Cnt),
			r.Condition,
		})
	}
	return mustBuild(dataset.HourlySchema, records)
}

// DailyFrame builds a daily table with two extra numeric columns
func DailyFrame(rows ...Day) dataframe.DataFrame {
	records := [][]string{{
		dataset.ColDayType, dataset.ColUserType, dataset.ColCount, "temp", "hum",
	}}
	for _, r := range rows {
		records = append(records, []string{
			r.DayType,
			r.UserType,
			strconv.Itoa(r.Cnt),
			strconv.FormatFloat(r.Temp, 'f', -1, 64),
			strconv.FormatFloat(r.Hum, 'f', -1, 64),
		})
	}
	return mustBuild(dataset.DailySchema, records)
}

// SegmentFrame builds a segment table
func SegmentFrame(rows ...Segment) dataframe.DataFrame {
	records := [][]string{{dataset.ColSegment, dataset.ColUserType}}
	for _, r := range rows {
		records = append(records, []string{r.Segment, r.UserType})
	}
	return mustBuild(dataset.SegmentSchema, records)
}

// Tables bundles the three frames into a snapshot
func Tables(hourly, daily, segments dataframe.DataFrame) *dataset.Tables {
	return &dataset.Tables{
		Hourly:   hourly,
		Daily:    daily,
		Segments: segments,
		Source:   "fixture",
		LoadedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Sample returns a small but complete snapshot
func Sample() *dataset.Tables {
	hourly := HourlyFrame(
		Hour{1, 1, 8, 0.20, 100, "Clear"},
		Hour{1, 1, 8, 0.22, 200, "Clear"},
		Hour{1, 2, 9, 0.25, 50, "Cloudy"},
		Hour{2, 1, 8, 0.60, 400, "Clear"},
		Hour{2, 3, 17, 0.55, 90, "Light Rain/Snow"},
		Hour{3, 1, 17, 0.80, 600, "Clear"},
		Hour{4, 2, 23, 0.10, 20, "Cloudy"},
	)
	daily := DailyFrame(
		Day{"weekday", "casual", 300, 0.3, 0.8},
		Day{"weekday", "registered", 3000, 0.3, 0.8},
		Day{"weekend", "casual", 900, 0.6, 0.5},
		Day{"weekend", "registered", 2500, 0.6, 0.5},
		Day{"holiday", "casual", 700, 0.5, 0.6},
		Day{"holiday", "registered", 1500, 0.5, 0.6},
	)
	segments := SegmentFrame(
		Segment{"Champions", "registered"},
		Segment{"Champions", "casual"},
		Segment{"Champions", "registered"},
		Segment{"At Risk", "casual"},
		Segment{"Loyal", "registered"},
	)
	return Tables(hourly, daily, segments)
}

func mustBuild(schema dataset.Schema, records [][]string) dataframe.DataFrame {
	df, err := dataset.FromRecords(schema, records)
	if err != nil {
		panic(fmt.Sprintf("datasettest: %v", err))
	}
	return df
}
