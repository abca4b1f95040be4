package riak

import (
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/tautek/riak/pbc"
)

// NewCircuitBreakerSettings returns breaker settings for the common case:
// trip once at least 3 requests were seen and 60% of them failed.
func NewCircuitBreakerSettings(maxRequests uint32, interval, timeout time.Duration) *gobreaker.Settings {
	return &gobreaker.Settings{
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
}

// newCircuitBreaker builds the breaker guarding one node. Only errors that
// break the connection count as failures: a ServerError or SchemaError means
// the node answered.
func newCircuitBreaker(addr string, settings gobreaker.Settings) *gobreaker.CircuitBreaker[[]byte] {
	if settings.Name == "" {
		settings.Name = addr
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool {
			return !pbc.ShouldCloseConnection(err)
		}
	}
	return gobreaker.NewCircuitBreaker[[]byte](settings)
}
