package metrics

import (
	"time"

	"mercator-hq/wiretap/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// InvocationMetrics tracks intercepted calls.
//
// Metrics:
//   - wiretap_invocations_total: Calls by method and outcome
//   - wiretap_invocation_duration_seconds: Wrapped call duration by method
type InvocationMetrics struct {
	invocationsTotal *prometheus.CounterVec
	duration         *prometheus.HistogramVec
}

// NewInvocationMetrics creates and registers invocation metrics with the provided registry.
func NewInvocationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *InvocationMetrics {
	im := &InvocationMetrics{
		invocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "invocations_total",
				Help:      "Total number of intercepted invocations",
			},
			[]string{"method", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "invocation_duration_seconds",
				Help:      "Duration of intercepted invocations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"method"},
		),
	}

	registry.MustRegister(
		im.invocationsTotal,
		im.duration,
	)

	return im
}

// Record counts one call and observes its duration.
func (im *InvocationMetrics) Record(method, outcome string, elapsed time.Duration) {
	im.invocationsTotal.WithLabelValues(method, outcome).Inc()
	im.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
