package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks the number of outbound calls to the relayer API.
	RelayerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayer_api_requests_total",
			Help: "Total number of relayer API requests made (by route, method and status).",
		},
		[]string{"route", "method", "status"},
	)

	// Measures duration of relayer API requests.
	RelayerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relayer_api_request_duration_seconds",
			Help:    "Duration of relayer API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"route", "method"},
	)

	// Tracks lifecycle outcomes: quoted, no_match, assembled, expired, error.
	LifecycleOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_match_lifecycle_total",
			Help: "Count of external match lifecycle outcomes by operation.",
		},
		[]string{"operation", "outcome"},
	)

	// Tracks quote validation failures by invariant.
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_validation_failures_total",
			Help: "Count of local quote validation failures by invariant.",
		},
		[]string{"invariant"},
	)
)

func IncRelayerRequest(route, method, status string) {
	RelayerRequestsTotal.WithLabelValues(route, method, status).Inc()
}

func ObserveRelayerLatency(route, method string, seconds float64) {
	RelayerRequestDuration.WithLabelValues(route, method).Observe(seconds)
}

func IncLifecycle(operation, outcome string) {
	LifecycleOutcomes.WithLabelValues(operation, outcome).Inc()
}

func IncValidationFailure(invariant string) {
	ValidationFailures.WithLabelValues(invariant).Inc()
}
