// Package retry defines retry policies as explicit values passed into call
// sites, rather than behavior baked into each client.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how many attempts an operation gets and how the delay
// between attempts grows. Multiplier 1 yields fixed-delay retries.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// Exponential returns the backoff shape used for backend calls: attempts
// spaced by initial*multiplier^n, capped at max.
func Exponential(attempts int, initial, max time.Duration, multiplier float64) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: initial,
		MaxInterval:     max,
		Multiplier:      multiplier,
	}
}

// Fixed returns a constant-delay policy.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: delay,
		MaxInterval:     delay,
		Multiplier:      1,
	}
}

// Do runs op under the policy, stopping early when ctx is cancelled or op
// returns a Permanent error.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
	return backoff.Retry(op, b)
}

// Permanent marks err as non-retryable so Do returns immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
