package category

import (
	"fmt"
	"sort"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
)

const moduleName = "category"

// All is the selector value that disables a filter
const All = "All"

// Mapping is a fixed bijection between integer codes and display labels
type Mapping struct {
	name    string
	labels  map[int]string
	codes   map[string]int
	ordered []int
}

func newMapping(name string, labels map[int]string) *Mapping {
	m := &Mapping{
		name:   name,
		labels: labels,
		codes:  make(map[string]int, len(labels)),
	}
	for code, label := range labels {
		if _, dup := m.codes[label]; dup {
			panic(fmt.Sprintf("category %s: duplicate label %q", name, label))
		}
		m.codes[label] = code
		m.ordered = append(m.ordered, code)
	}
	sort.Ints(m.ordered)
	return m
}

// Season maps the season column (1-4)
var Season = newMapping("season", map[int]string{
	1: "Spring",
	2: "Summer",
	3: "Fall",
	4: "Winter",
})

// Weather maps the weathersit column (1-4)
var Weather = newMapping("weathersit", map[int]string{
	1: "Clear",
	2: "Cloudy",
	3: "Light Rain/Snow",
	4: "Heavy Rain/Snow",
})

// Name returns the column this mapping translates
func (m *Mapping) Name() string {
	return m.name
}

// Label returns the display label for code
func (m *Mapping) Label(code int) (string, error) {
	label, ok := m.labels[code]
	if !ok {
		return "", apperror.New(apperror.ErrLookup, moduleName, "unmapped %s code %d", m.name, code)
	}
	return label, nil
}

// Code returns the code for an exact display label
func (m *Mapping) Code(label string) (int, error) {
	code, ok := m.codes[label]
	if !ok {
		return 0, apperror.New(apperror.ErrLookup, moduleName, "unmapped %s label %q", m.name, label)
	}
	return code, nil
}

// Codes returns all codes in ascending order
func (m *Mapping) Codes() []int {
	out := make([]int, len(m.ordered))
	copy(out, m.ordered)
	return out
}

// Labels returns all labels in code order
func (m *Mapping) Labels() []string {
	out := make([]string, 0, len(m.ordered))
	for _, code := range m.ordered {
		out = append(out, m.labels[code])
	}
	return out
}

// Options returns the selector choices: All followed by the labels
func (m *Mapping) Options() []string {
	return append([]string{All}, m.Labels()...)
}

// CompositeLabel formats "<Season> - <Weather>" for a heatmap row
func CompositeLabel(seasonCode, weatherCode int) (string, error) {
	season, err := Season.Label(seasonCode)
	if err != nil {
		return "", err
	}
	weather, err := Weather.Label(weatherCode)
	if err != nil {
		return "", err
	}
	return season + " - " + weather, nil
}
