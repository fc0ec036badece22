package router

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerRegistry manages one circuit breaker per provider.
type BreakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *slog.Logger

	// Trip after this many consecutive failures (default 5).
	MaxFailures uint32
	// Time spent open before allowing a probe (default 30s).
	OpenTimeout time.Duration
}

// NewBreakerRegistry creates an empty registry.
func NewBreakerRegistry(logger *slog.Logger) *BreakerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakerRegistry{
		breakers:    make(map[string]*gobreaker.CircuitBreaker),
		logger:      logger,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// Get returns the breaker for the provider, creating it on first use.
func (r *BreakerRegistry) Get(provider string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[provider]; ok {
		return cb
	}

	maxFailures := r.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     r.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			r.logger.Warn("circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about provider health.
			if err == nil {
				return true
			}
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	r.breakers[provider] = cb
	return cb
}

// State reports the current state of a provider's breaker.
func (r *BreakerRegistry) State(provider string) gobreaker.State {
	return r.Get(provider).State()
}
