// Package metrics defines the Prometheus collectors for a scoring run and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "articlescore"

// Metrics holds all Prometheus collectors for a run.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal   *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	LexiconWords     *prometheus.GaugeVec
	WorkersBusy      prometheus.Gauge
	ExportsTotal     *prometheus.CounterVec
}

// New creates all collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_total",
				Help:      "Documents processed by status (ok, failed).",
			},
			[]string{"status"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Per-document analysis latency in seconds.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of record cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of record cache misses.",
			},
		),
		LexiconWords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "lexicon_words",
				Help:      "Words loaded per lexicon (positive, negative, stop).",
			},
			[]string{"lexicon"},
		),
		WorkersBusy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workers_busy",
				Help:      "Number of workers currently analyzing a document.",
			},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Export attempts by format and status.",
			},
			[]string{"format", "status"},
		),
	}

	m.registry.MustRegister(
		m.DocumentsTotal,
		m.AnalysisDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.LexiconWords,
		m.WorkersBusy,
		m.ExportsTotal,
	)

	return m
}

// ObserveDocument records the outcome and latency of one analysis.
// Safe to call on a nil *Metrics.
func (m *Metrics) ObserveDocument(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.DocumentsTotal.WithLabelValues(status).Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

// ObserveCache records a cache lookup
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
		return
	}
	m.CacheMissesTotal.Inc()
}

// ObserveExport records an export attempt
func (m *Metrics) ObserveExport(format string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.ExportsTotal.WithLabelValues(format, status).Inc()
}

// SetLexiconSize records the size of a loaded lexicon
func (m *Metrics) SetLexiconSize(name string, words int) {
	if m == nil {
		return
	}
	m.LexiconWords.WithLabelValues(name).Set(float64(words))
}

// WorkerStarted and WorkerDone track pool occupancy
func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.WorkersBusy.Inc()
}

func (m *Metrics) WorkerDone() {
	if m == nil {
		return
	}
	m.WorkersBusy.Dec()
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
