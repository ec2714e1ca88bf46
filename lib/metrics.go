package lib

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProcessorCallCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storepay_processor_calls_total",
			Help: "Total number of outbound calls to the payment processor.",
		},
		[]string{"operation", "status"},
	)

	ProcessorCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storepay_processor_call_duration_seconds",
			Help:    "Latency of outbound calls to the payment processor.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// PrometheusInit registers the processor-call metrics.
func PrometheusInit() {
	prometheus.MustRegister(ProcessorCallCount)
	prometheus.MustRegister(ProcessorCallDuration)
}
