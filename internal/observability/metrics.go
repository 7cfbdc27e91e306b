package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgeads_requests_total",
			Help: "Total requests handled",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edgeads_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// flag evaluations labelled by flag and result ("true", "false" or "error")
	FlagEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgeads_flag_evaluations_total",
			Help: "Total feature flag evaluations",
		},
		[]string{"flag", "result"},
	)

	// latency of the external flag evaluator
	FlagEvaluationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edgeads_flag_evaluation_duration_seconds",
			Help:    "Duration of feature flag evaluations",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"flag"},
	)

	// number of responses annotated by the egress hook
	EgressAnnotations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edgeads_egress_annotations_total",
			Help: "Total responses annotated on egress",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		FlagEvaluations,
		FlagEvaluationLatency,
		EgressAnnotations,
	)
}
