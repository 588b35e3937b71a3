// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FriendRequestTransitions counts lifecycle transitions by outcome
	// (sent, accepted, rejected).
	FriendRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mutuals_friend_request_transitions_total",
		Help: "Total number of friend request lifecycle transitions by outcome",
	}, []string{"transition"})

	// BlockOperations counts block edge mutations by operation (block, unblock).
	BlockOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mutuals_block_operations_total",
		Help: "Total number of block edge operations",
	}, []string{"operation"})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mutuals_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mutuals_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
