// Package retry provides bounded retry helpers for network call sites.
// Only retryable errors (see errors.IsRetryable) are attempted again;
// everything else propagates on the first failure.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"tracksync/internal/errors"
)

const (
	// DefaultMaxAttempts bounds the total number of attempts per call
	DefaultMaxAttempts = 3
	// DefaultDelay is the fixed pause between attempts in the delay variant
	DefaultDelay = 5 * time.Second
)

// Config holds retry tuning for a client
type Config struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultConfig returns the default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
	}
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return c.MaxAttempts
}

// Do runs fn up to maxAttempts times with no delay between attempts,
// returning the first success or the last error.
func Do[T any](ctx context.Context, maxAttempts int, fn func() (T, error)) (T, error) {
	var zero T
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !errors.IsRetryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// DoWithDelay runs fn with a fixed delay between attempts. Context
// cancellation stops the wait and surfaces the context error.
func DoWithDelay[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(cfg.maxAttempts()-1)),
		ctx,
	)

	return backoff.RetryWithData(func() (T, error) {
		result, err := fn()
		if err != nil && !errors.IsRetryable(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, policy)
}
