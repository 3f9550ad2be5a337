package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	FormsCreated       prometheus.Counter
	ResponsesSubmitted prometheus.Counter
	ValidationFailures prometheus.Counter
	WebhookEvents      *prometheus.CounterVec
	ProviderCallMs     *prometheus.HistogramVec
	RequestLatencyMs   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		FormsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "formbridge_forms_created_total",
			Help: "Total number of forms published",
		}),
		ResponsesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "formbridge_responses_submitted_total",
			Help: "Total number of responses accepted by the authoritative validator",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "formbridge_validation_failures_total",
			Help: "Total number of submissions rejected with field errors",
		}),
		WebhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "formbridge_webhook_events_total",
			Help: "Provider webhook notifications processed, by outcome",
		}, []string{"outcome"}),
		ProviderCallMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formbridge_provider_call_duration_ms",
			Help:    "Latency of outbound provider API calls in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"operation"}),
		RequestLatencyMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formbridge_http_request_duration_ms",
			Help:    "Latency of inbound HTTP requests in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"path", "method"}),
	}
}

// ObserveProviderCall records one outbound provider call.
func (m *Metrics) ObserveProviderCall(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.ProviderCallMs.WithLabelValues(operation).
		Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
