package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "openlogistics"

// Outcome labels for engine request metrics.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeTimeout  = "timeout"
	outcomeError    = "error"
)

// metrics holds the engine collectors on a private registry. A nil *metrics
// records nothing.
type metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	confidence *prometheus.HistogramVec
	registry   *prometheus.Registry
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()

	m := &metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "engine_requests_total",
				Help:      "Total number of engine requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "engine_duration_seconds",
				Help:      "Duration of engine requests in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
		confidence: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "confidence_score",
				Help:      "Confidence reported by successful engine requests",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(m.requests, m.duration, m.confidence)
	return m
}

func (m *metrics) record(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *metrics) observeConfidence(operation string, score float64) {
	if m == nil {
		return
	}
	m.confidence.WithLabelValues(operation).Observe(score)
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
