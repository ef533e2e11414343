package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BridgeRequestsTotal counts completed Bridge API calls by method, resource hint and outcome
	BridgeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_requests_total",
			Help: "Total number of Bridge API calls",
		},
		[]string{"method", "resource", "outcome"},
	)

	// BridgeRequestDuration tracks the wall time of a call including retries
	BridgeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_request_duration_seconds",
			Help:    "Duration of Bridge API calls including rate-limit backoff",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "resource"},
	)

	// BridgeRateLimitRetriesTotal counts 429 responses that were retried
	BridgeRateLimitRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_rate_limit_retries_total",
			Help: "Total number of requests resubmitted after a 429 response",
		},
		[]string{"method"},
	)

	// MaterializeUnmatchedTotal counts objects no resource pattern recognised
	MaterializeUnmatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_materialize_unmatched_total",
			Help: "Objects left untyped after every inference strategy failed",
		},
	)
)
