// Package telemetry groups the observability packages of wiretap.
//
// # Components
//
//   - logging: slog construction, request-scoped attributes and a recording
//     handler for tests (logging/logtest)
//   - metrics: Prometheus counters and histograms for intercepted calls
//   - health: liveness, readiness and version endpoints
//
// The interceptor writes its call records to the logger built by
// logging.New and reports every call to a metrics.Collector:
//
//	logger, err := logging.New(logging.Config{Level: "debug", Format: "json"})
//	collector := metrics.NewCollector(&cfg.Metrics, prometheus.NewRegistry())
//	ic := interceptor.New(interceptor.Options{Logger: logger, Metrics: collector})
package telemetry
