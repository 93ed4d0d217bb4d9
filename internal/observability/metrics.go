package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsignal_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adsignal_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// requests rejected by the per-client limiter
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsignal_rate_limit_hits_total",
			Help: "Total requests rejected by rate limiting",
		},
		[]string{"endpoint"},
	)

	// evaluation passes labelled by verdict (influenced/clean)
	EvaluationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsignal_evaluations_total",
			Help: "Total evaluation passes by verdict",
		},
		[]string{"verdict"},
	)

	// beneficiaries reported, labelled by source type
	BeneficiaryCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsignal_beneficiaries_total",
			Help: "Total beneficiaries reported by source type",
		},
		[]string{"source"},
	)

	// removal requests labelled by source type and outcome
	RemovalCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsignal_removals_total",
			Help: "Total removal requests by source type and outcome",
		},
		[]string{"source", "outcome"},
	)

	// evaluations that panicked and degraded to a neutral verdict
	EvaluationFaults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adsignal_evaluation_faults_total",
			Help: "Total evaluations that recovered from an internal fault",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		RateLimitHits,
		EvaluationCount,
		BeneficiaryCount,
		RemovalCount,
		EvaluationFaults,
	)
}
