// Package metrics exposes refresh and extraction counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	weeks         prometheus.Gauge
	reps          prometheus.Gauge
	skipped       *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
}

// New registers the weekboard collectors plus Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weekboard_fetch_total",
			Help: "Refresh cycles by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weekboard_fetch_duration_seconds",
			Help:    "Duration of fetch and parse per refresh cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		weeks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weekboard_weeks",
			Help: "Weeks held by the store.",
		}),
		reps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weekboard_reps",
			Help: "Rep records across all weeks.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weekboard_rows_skipped_total",
			Help: "Rows ignored during extraction by reason.",
		}, []string{"reason"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weekboard_last_success_timestamp_seconds",
			Help: "Unix time of the last successful refresh.",
		}),
	}
	m.registry.MustRegister(
		m.fetches,
		m.fetchDuration,
		m.weeks,
		m.reps,
		m.skipped,
		m.lastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// Export both results at zero before the first cycle.
	m.fetches.WithLabelValues(ResultOK)
	m.fetches.WithLabelValues(ResultError)
	return m
}

// ObserveFetch records one cycle's outcome.
func (m *Metrics) ObserveFetch(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result).Inc()
	m.fetchDuration.Observe(d.Seconds())
	if result == ResultOK {
		m.lastSuccess.SetToCurrentTime()
	}
}

// SetLoaded records the size of the latest successful load.
func (m *Metrics) SetLoaded(weeks, reps int) {
	if m == nil {
		return
	}
	m.weeks.Set(float64(weeks))
	m.reps.Set(float64(reps))
}

// AddSkipped counts rows ignored for reason.
func (m *Metrics) AddSkipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skipped.WithLabelValues(reason).Add(float64(n))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
