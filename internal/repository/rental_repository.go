package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/pkg/logger"
)

// ErrNotLoaded is returned before the first successful load
var ErrNotLoaded = errors.New("datasets not loaded")

// LoadObserver is notified after every load attempt
type LoadObserver interface {
	ObserveLoad(elapsed time.Duration, rows map[string]int, err error)
}

// RentalRepository holds the current immutable dataset snapshot. Readers get
// a consistent snapshot without locking; loads are serialized.
type RentalRepository struct {
	loader   dataset.Loader
	observer LoadObserver
	current  atomic.Pointer[dataset.Tables]
	loadMu   sync.Mutex
}

// NewRentalRepository creates a repository. observer may be nil.
func NewRentalRepository(loader dataset.Loader, observer LoadObserver) *RentalRepository {
	return &RentalRepository{
		loader:   loader,
		observer: observer,
	}
}

// Load reads a fresh snapshot and swaps it in. On failure the previous
// snapshot stays in place.
func (r *RentalRepository) Load(ctx context.Context) error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	start := time.Now()
	tables, err := r.loader.Load(ctx)
	elapsed := time.Since(start)

	if err != nil {
		r.observe(elapsed, nil, err)
		return fmt.Errorf("failed to load datasets from %s: %w", r.loader.Describe(), err)
	}

	r.current.Store(tables)
	rows := RowCounts(tables)
	r.observe(elapsed, rows, nil)
	logger.Infof("Loaded datasets from %s in %v (hourly=%d daily=%d segments=%d)",
		tables.Source, elapsed, rows["hourly"], rows["daily"], rows["segments"])
	return nil
}

// Reload is Load for background triggers: errors are logged, not returned
func (r *RentalRepository) Reload(ctx context.Context) {
	if err := r.Load(ctx); err != nil {
		logger.Errorf("Dataset reload failed, keeping previous snapshot: %v", err)
	}
}

// Snapshot returns the current tables
func (r *RentalRepository) Snapshot() (*dataset.Tables, error) {
	tables := r.current.Load()
	if tables == nil {
		return nil, ErrNotLoaded
	}
	return tables, nil
}

// RowCounts reports the row count per table of a snapshot
func RowCounts(tables *dataset.Tables) map[string]int {
	return map[string]int{
		dataset.HourlySchema.Name:  tables.Hourly.Nrow(),
		dataset.DailySchema.Name:   tables.Daily.Nrow(),
		dataset.SegmentSchema.Name: tables.Segments.Nrow(),
	}
}

func (r *RentalRepository) observe(elapsed time.Duration, rows map[string]int, err error) {
	if r.observer != nil {
		r.observer.ObserveLoad(elapsed, rows, err)
	}
}
