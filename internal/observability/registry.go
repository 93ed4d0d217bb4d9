package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// so components never touch the global Prometheus collectors directly.
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)
	IncrementRateLimitHits(endpoint string)

	// Engine metrics
	IncrementEvaluations(verdict string)
	IncrementBeneficiaries(source string)
	IncrementRemovals(source, outcome string)
	IncrementEvaluationFaults()
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementRateLimitHits(endpoint string) {
	RateLimitHits.WithLabelValues(endpoint).Inc()
}

// Engine metrics
func (r *PrometheusRegistry) IncrementEvaluations(verdict string) {
	EvaluationCount.WithLabelValues(verdict).Inc()
}

func (r *PrometheusRegistry) IncrementBeneficiaries(source string) {
	BeneficiaryCount.WithLabelValues(source).Inc()
}

func (r *PrometheusRegistry) IncrementRemovals(source, outcome string) {
	RemovalCount.WithLabelValues(source, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementEvaluationFaults() {
	EvaluationFaults.Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementRateLimitHits(endpoint string)                               {}
func (r *NoOpRegistry) IncrementEvaluations(verdict string)                                  {}
func (r *NoOpRegistry) IncrementBeneficiaries(source string)                                 {}
func (r *NoOpRegistry) IncrementRemovals(source, outcome string)                             {}
func (r *NoOpRegistry) IncrementEvaluationFaults()                                           {}
