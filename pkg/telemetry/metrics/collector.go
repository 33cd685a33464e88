package metrics

import (
	"sync"
	"time"

	"mercator-hq/wiretap/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// OtherLabel replaces label values once the cardinality limit is reached.
const OtherLabel = "other"

// Collector owns the Prometheus metrics recorded by interceptors. It
// implements interceptor.Recorder.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	invocationMetrics *InvocationMetrics
	loggingMetrics    *LoggingMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering its metrics on registry. If
// registry is nil a new one is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "wiretap"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "wiretap"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Handler latencies, 1ms to 10s
		cfg.DurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10}
	}
	if cfg.MaxCardinality <= 0 {
		cfg.MaxCardinality = 10000
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		invocationMetrics:  NewInvocationMetrics(cfg, registry),
		loggingMetrics:     NewLoggingMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(cfg.MaxCardinality),
	}
}

// RecordInvocation records a completed call.
//
// Parameters:
//   - method: Logged method name
//   - outcome: "success", "error", "panic" or "exit"
//   - elapsed: Time spent in the wrapped call
func (c *Collector) RecordInvocation(method, outcome string, elapsed time.Duration) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow("method:" + method) {
		method = OtherLabel
	}
	c.invocationMetrics.Record(method, outcome, elapsed)
}

// RecordScrubbed records an argument value replaced by the scrubber.
func (c *Collector) RecordScrubbed(string) {
	if !c.config.Enabled {
		return
	}

	c.loggingMetrics.RecordScrubbed()
}

// RecordLoggingFailure records a failure while building a log record.
//
// Parameters:
//   - stage: "pre-proceed" or "post-proceed"
func (c *Collector) RecordLoggingFailure(stage string) {
	if !c.config.Enabled {
		return
	}

	c.loggingMetrics.RecordFailure(stage)
}

// RecordSerializationFailure records a value that could not be rendered.
func (c *Collector) RecordSerializationFailure(typeName string) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow("type:" + typeName) {
		typeName = OtherLabel
	}
	c.loggingMetrics.RecordSerializationFailure(typeName)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet may be used. Known label sets are always
// allowed; new ones only while the limit has not been reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
