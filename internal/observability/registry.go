package observability

import "time"

// MetricsRegistry records application metrics. Handlers depend on this
// interface rather than on the global Prometheus collectors.
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Flag evaluation metrics
	IncrementFlagEvaluations(flag, result string)
	RecordFlagEvaluationLatency(flag string, duration time.Duration)

	// Egress metrics
	IncrementEgressAnnotations()
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementFlagEvaluations(flag, result string) {
	FlagEvaluations.WithLabelValues(flag, result).Inc()
}

func (r *PrometheusRegistry) RecordFlagEvaluationLatency(flag string, duration time.Duration) {
	FlagEvaluationLatency.WithLabelValues(flag).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementEgressAnnotations() {
	EgressAnnotations.Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementFlagEvaluations(flag, result string)                         {}
func (r *NoOpRegistry) RecordFlagEvaluationLatency(flag string, duration time.Duration)      {}
func (r *NoOpRegistry) IncrementEgressAnnotations()                                          {}
