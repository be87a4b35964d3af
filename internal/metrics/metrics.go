// internal/metrics/metrics.go

// Package metrics exposes the service's Prometheus instrumentation on a
// dedicated registry so tests can create isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service registers
type Metrics struct {
	registry *prometheus.Registry

	RunsStarted    prometheus.Counter
	RunsCompleted  prometheus.Counter
	RunsFailed     prometheus.Counter
	PostsAnalyzed  prometheus.Counter
	RecordsSkipped prometheus.Counter
	RunDuration    prometheus.Histogram
}

// New creates a metrics set backed by its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reelscope",
			Name:      "runs_started_total",
			Help:      "Number of analysis runs accepted.",
		}),
		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reelscope",
			Name:      "runs_completed_total",
			Help:      "Number of analysis runs finished successfully.",
		}),
		RunsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reelscope",
			Name:      "runs_failed_total",
			Help:      "Number of analysis runs that ended in an error.",
		}),
		PostsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reelscope",
			Name:      "posts_analyzed_total",
			Help:      "Number of posts included in completed analyses.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reelscope",
			Name:      "records_skipped_total",
			Help:      "Number of malformed source records dropped during normalization.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reelscope",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of analysis runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	registry.MustRegister(
		m.RunsStarted,
		m.RunsCompleted,
		m.RunsFailed,
		m.PostsAnalyzed,
		m.RecordsSkipped,
		m.RunDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
