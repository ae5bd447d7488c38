// Package circuitbreaker wraps sony/gobreaker/v2 behind a small generic
// façade so every infra adapter in the engine trips the same way on
// repeated transient I/O failures instead of propagating them as hard
// failures up the call stack.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config tunes a breaker instance.
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ConsecutiveTrips uint32
	OnStateChange    func(name string, from, to gobreaker.State)
}

// DefaultConfig returns sensible defaults for an external-call breaker:
// trips after 5 consecutive failures, stays open 10s, allows 3 probes.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          10 * time.Second,
		ConsecutiveTrips: 5,
	}
}

// CircuitBreaker executes calls returning T, tripping open after repeated
// failures and short-circuiting further calls until Timeout elapses.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New builds a CircuitBreaker[T] from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveTrips
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker.
func (b *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return b.cb.Execute(fn)
}

// State returns the breaker's current state.
func (b *CircuitBreaker[T]) State() gobreaker.State {
	return b.cb.State()
}
