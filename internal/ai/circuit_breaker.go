package ai

import (
	"fmt"

	"jobmatch/internal/config"
	"jobmatch/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// Breaker guards calls returning T with a circuit breaker. A nil Breaker
// runs calls directly, which is how a disabled breaker behaves.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewBreaker builds a breaker from cfg, or returns nil when it is disabled.
// The breaker trips once at least MinRequests calls were seen in the interval
// and the failure ratio reaches FailureThreshold.
func NewBreaker[T any](name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *Breaker[T] {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// Stats reports the breaker state for health endpoints
func (b *Breaker[T]) Stats() map[string]any {
	if b == nil {
		return map[string]any{"enabled": false}
	}
	counts := b.cb.Counts()
	return map[string]any{
		"enabled":  true,
		"name":     b.cb.Name(),
		"state":    b.cb.State().String(),
		"requests": counts.Requests,
		"failures": counts.TotalFailures,
	}
}

// IsHealthy is true unless the breaker is open or half-open
func (b *Breaker[T]) IsHealthy() bool {
	return b == nil || b.cb.State() == gobreaker.StateClosed
}

func breakerName(provider, operation string) string {
	return fmt.Sprintf("AI-%s-%s", provider, operation)
}
