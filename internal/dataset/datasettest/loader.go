package datasettest

import (
	"context"
	"sync"

	"github.com/jengzang/bikeshare-insights/internal/dataset"
)

// StaticLoader returns preset snapshots, one per Load call; the last one
// repeats. Err, when set, is returned instead.
type StaticLoader struct {
	mu     sync.Mutex
	tables []*dataset.Tables
	calls  int
	Err    error
}

// NewStaticLoader creates a loader over the given snapshots
func NewStaticLoader(tables ...*dataset.Tables) *StaticLoader {
	return &StaticLoader{tables: tables}
}

func (l *StaticLoader) Load(ctx context.Context) (*dataset.Tables, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.Err != nil {
		return nil, l.Err
	}
	i := l.calls - 1
	if i >= len(l.tables) {
		i = len(l.tables) - 1
	}
	return l.tables[i], nil
}

func (l *StaticLoader) Describe() string {
	return "static"
}

// SetErr changes the error returned by later loads
func (l *StaticLoader) SetErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Err = err
}

// Calls returns how many times Load ran
func (l *StaticLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
