// Package metrics provides Prometheus metrics for intercepted invocations.
//
// # Metrics
//
//	wiretap_invocations_total{method,outcome}        Intercepted calls by outcome (success, error, panic, exit)
//	wiretap_invocation_duration_seconds{method}      Wrapped call duration
//	wiretap_serialization_failures_total{type}       Values that could not be rendered for logging
//	wiretap_scrubbed_params_total                    Argument values replaced by the scrubber
//	wiretap_logging_failures_total{stage}            Pre- or post-proceed logging failures
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	ic := interceptor.New(interceptor.Options{Metrics: collector})
//	r.Handle("/metrics", collector.Handler())
//
// # Cardinality Management
//
// Method and type labels come from code, not from requests, but generated
// services can still register many of them. The collector caps the number of
// distinct label sets; once the cap is reached new values are recorded as
// "other".
package metrics
