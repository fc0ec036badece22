package orchestrator

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig configures exponential backoff retry behavior.
type RetryConfig struct {
	InitialInterval     time.Duration // Initial retry interval (default 200ms)
	MaxInterval         time.Duration // Maximum retry interval (default 5s)
	MaxElapsedTime      time.Duration // Maximum total retry time (default 30s)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     200 * time.Millisecond,
		MaxInterval:         5 * time.Second,
		MaxElapsedTime:      30 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// withRetry runs op with exponential backoff until it succeeds, returns a
// backoff.Permanent error, the elapsed budget runs out, or ctx is done.
func withRetry(ctx context.Context, cfg RetryConfig, op func() error) error {
	operation := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return op()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.InitialInterval
	policy.MaxInterval = cfg.MaxInterval
	policy.MaxElapsedTime = cfg.MaxElapsedTime
	policy.Multiplier = cfg.Multiplier
	policy.RandomizationFactor = cfg.RandomizationFactor

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}
