package metrics

import (
	"mercator-hq/wiretap/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// LoggingMetrics tracks the health of the logging pipeline itself.
//
// Metrics:
//   - wiretap_serialization_failures_total: Unrenderable values by type
//   - wiretap_scrubbed_params_total: Scrubbed argument values
//   - wiretap_logging_failures_total: Failed log stages
type LoggingMetrics struct {
	serializationFailures *prometheus.CounterVec
	scrubbedParams        prometheus.Counter
	loggingFailures       *prometheus.CounterVec
}

// NewLoggingMetrics creates and registers logging pipeline metrics with the provided registry.
func NewLoggingMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LoggingMetrics {
	lm := &LoggingMetrics{
		serializationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "serialization_failures_total",
				Help:      "Total number of values that could not be serialized for logging",
			},
			[]string{"type"},
		),

		scrubbedParams: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "scrubbed_params_total",
				Help:      "Total number of argument values replaced by the scrubber",
			},
		),

		loggingFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "logging_failures_total",
				Help:      "Total number of failures while building log records",
			},
			[]string{"stage"},
		),
	}

	registry.MustRegister(
		lm.serializationFailures,
		lm.scrubbedParams,
		lm.loggingFailures,
	)

	return lm
}

// RecordSerializationFailure counts a value of typeName that could not be rendered.
func (lm *LoggingMetrics) RecordSerializationFailure(typeName string) {
	lm.serializationFailures.WithLabelValues(typeName).Inc()
}

// RecordScrubbed counts a scrubbed argument.
func (lm *LoggingMetrics) RecordScrubbed() {
	lm.scrubbedParams.Inc()
}

// RecordFailure counts a failed logging stage.
func (lm *LoggingMetrics) RecordFailure(stage string) {
	lm.loggingFailures.WithLabelValues(stage).Inc()
}
