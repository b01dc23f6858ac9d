// Package metrics exposes Prometheus collectors for the tasks API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"tasks-api/internal/service/csrf"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	tokensIssued  *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		tokensIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csrf_tokens_issued_total",
				Help: "CSRF token issuance requests by result (minted or reused)",
			},
			[]string{"result"},
		),
		gateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csrf_gate_decisions_total",
				Help: "CSRF gate checks by outcome",
			},
			[]string{"outcome"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by route and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// TokenIssued implements csrf.Recorder.
func (m *Metrics) TokenIssued(reused bool) {
	result := "minted"
	if reused {
		result = "reused"
	}
	m.tokensIssued.WithLabelValues(result).Inc()
}

// GateDecision implements csrf.Recorder.
func (m *Metrics) GateDecision(outcome csrf.Outcome) {
	m.gateDecisions.WithLabelValues(string(outcome)).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ csrf.Recorder = (*Metrics)(nil)
