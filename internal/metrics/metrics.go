// Package metrics exposes Prometheus instrumentation for verifications.
//
// Each Metrics value owns its registry so that tests and multiple servers in
// one process never collide on registration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "credence"

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts verifications by outcome (ok, rejected, invalid, unavailable, error)
	RequestsTotal *prometheus.CounterVec

	// DegradedTotal counts signals replaced by their default, by component
	DegradedTotal *prometheus.CounterVec

	// FallbackAttemptsTotal counts chain attempts by chain, link and result
	FallbackAttemptsTotal *prometheus.CounterVec

	// BlacklistHitsTotal counts requests short-circuited by the blacklist
	BlacklistHitsTotal prometheus.Counter

	// BlacklistWritesTotal counts new blacklist entries by source
	BlacklistWritesTotal *prometheus.CounterVec

	// RequestDuration measures end-to-end verification latency by mode
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verify",
			Name:      "requests_total",
			Help:      "Verification requests by outcome.",
		}, []string{"outcome"}),
		DegradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "degraded_total",
			Help:      "Signals that fell back to their default value.",
		}, []string{"component"}),
		FallbackAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fallback",
			Name:      "attempts_total",
			Help:      "Fallback chain attempts by chain, link and result.",
		}, []string{"chain", "link", "result"}),
		BlacklistHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blacklist",
			Name:      "hits_total",
			Help:      "Requests rejected because their URL is blacklisted.",
		}),
		BlacklistWritesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blacklist",
			Name:      "writes_total",
			Help:      "Blacklist entries written, by source.",
		}, []string{"source"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "verify",
			Name:      "duration_seconds",
			Help:      "End-to-end verification latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"mode"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.DegradedTotal,
		m.FallbackAttemptsTotal,
		m.BlacklistHitsTotal,
		m.BlacklistWritesTotal,
		m.RequestDuration,
	)

	return m
}

// Registry returns the registry backing these metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished verification
func (m *Metrics) ObserveRequest(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if mode == "" {
		mode = "none"
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// Degraded records a signal replaced by its default
func (m *Metrics) Degraded(component string) {
	if m == nil {
		return
	}
	m.DegradedTotal.WithLabelValues(component).Inc()
}

// FallbackAttempt records one link of a fallback chain
func (m *Metrics) FallbackAttempt(chain, link string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.FallbackAttemptsTotal.WithLabelValues(chain, link, result).Inc()
}

// BlacklistHit records a short-circuited request
func (m *Metrics) BlacklistHit() {
	if m == nil {
		return
	}
	m.BlacklistHitsTotal.Inc()
}

// BlacklistWrite records a new blacklist entry
func (m *Metrics) BlacklistWrite(source string) {
	if m == nil {
		return
	}
	m.BlacklistWritesTotal.WithLabelValues(source).Inc()
}
