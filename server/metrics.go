package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "ontograph"

// Metrics collects the server's Prometheus metrics. Each server owns
// its registry so tests can run in parallel without collisions.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reloadsTotal    *prometheus.CounterVec
	termsLoaded     prometheus.Gauge
}

// NewMetrics creates the server metric set on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "Total number of query requests by operation and status",
			},
			[]string{"op", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "Query request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"op"},
		),
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "reloads_total",
				Help:      "Ontology reloads by outcome",
			},
			[]string{"status"},
		),
		termsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "terms_loaded",
				Help:      "Number of terms in the currently served ontology",
			},
		),
	}

	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.reloadsTotal, m.termsLoaded)
	return m
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one query request.
func (m *Metrics) ObserveRequest(op, status string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(op, status).Inc()
	m.requestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveReload records an ontology reload attempt.
func (m *Metrics) ObserveReload(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.reloadsTotal.WithLabelValues(status).Inc()
}

// SetTermsLoaded records the size of the served graph.
func (m *Metrics) SetTermsLoaded(n int) {
	m.termsLoaded.Set(float64(n))
}
