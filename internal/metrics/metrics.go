// Package metrics records dataset loads and chart computations with
// Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
)

// Recorder records into its own registry rather than the global default
type Recorder struct {
	registry *prometheus.Registry

	viewDuration    *prometheus.HistogramVec
	viewTotal       *prometheus.CounterVec
	loadDuration    prometheus.Histogram
	loadTotal       *prometheus.CounterVec
	datasetRows     *prometheus.GaugeVec
	lastLoadSuccess prometheus.Gauge
}

// NewRecorder creates a recorder with Go and process collectors registered
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		viewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_view_duration_seconds",
			Help:    "Time spent filtering and aggregating one chart view.",
			Buckets: prometheus.DefBuckets,
		}, []string{"view"}),
		viewTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_view_total",
			Help: "Chart view computations by outcome.",
		}, []string{"view", "outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Time spent loading the dataset snapshot.",
			Buckets: prometheus.DefBuckets,
		}),
		loadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataset_load_total",
			Help: "Dataset snapshot loads by outcome.",
		}, []string{"outcome"}),
		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dataset_rows",
			Help: "Rows in the current snapshot per table.",
		}, []string{"table"}),
		lastLoadSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dataset_last_load_success_timestamp_seconds",
			Help: "Unix time of the last successful snapshot load.",
		}),
	}

	registry.MustRegister(
		r.viewDuration,
		r.viewTotal,
		r.loadDuration,
		r.loadTotal,
		r.datasetRows,
		r.lastLoadSuccess,
	)
	return r
}

// ObserveView records one chart computation
func (r *Recorder) ObserveView(view string, elapsed time.Duration, err error) {
	r.viewDuration.WithLabelValues(view).Observe(elapsed.Seconds())
	r.viewTotal.WithLabelValues(view, outcome(err)).Inc()
}

// ObserveLoad records one snapshot load. rows maps table name to row count
// and is only applied on success.
func (r *Recorder) ObserveLoad(elapsed time.Duration, rows map[string]int, err error) {
	r.loadDuration.Observe(elapsed.Seconds())
	r.loadTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	for table, n := range rows {
		r.datasetRows.WithLabelValues(table).Set(float64(n))
	}
	r.lastLoadSuccess.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperror.IsUserError(err):
		return "rejected"
	case errors.Is(err, apperror.ErrMissingColumn), errors.Is(err, apperror.ErrMalformed):
		return "schema_error"
	default:
		return "error"
	}
}
