// Package metrics holds the Prometheus collectors for the recipe pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeInFlight   = "in_flight"
	OutcomeFailure    = "failure"
)

// Metrics owns a dedicated registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	saves       prometheus.Counter
	removals    prometheus.Counter
	exports     prometheus.Counter
	generation  *prometheus.HistogramVec
}

// New creates the collectors and registers them along with the Go runtime collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_submissions_total",
				Help: "Recipe requests by outcome",
			},
			[]string{"outcome"},
		),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipe_saves_total",
			Help: "Recipes added to a saved list",
		}),
		removals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipe_removals_total",
			Help: "Remove requests against a saved list",
		}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipe_exports_total",
			Help: "Printable recipe documents produced",
		}),
		generation: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipe_generation_seconds",
				Help:    "Time spent producing a recipe batch",
				Buckets: prometheus.ExponentialBuckets(0.005, 3, 10),
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		m.submissions,
		m.saves,
		m.removals,
		m.exports,
		m.generation,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// TrackLiveSessions exports count as the recipe_live_sessions gauge. It is
// read on every scrape.
func (m *Metrics) TrackLiveSessions(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "recipe_live_sessions",
			Help: "Browser sessions held in memory",
		},
		func() float64 { return float64(count()) },
	))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Saved() {
	if m == nil {
		return
	}
	m.saves.Inc()
}

func (m *Metrics) Removed() {
	if m == nil {
		return
	}
	m.removals.Inc()
}

func (m *Metrics) Exported() {
	if m == nil {
		return
	}
	m.exports.Inc()
}

func (m *Metrics) ObserveGeneration(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.generation.WithLabelValues(provider).Observe(d.Seconds())
}
