// Package retry wraps calls to the completion API with bounded exponential backoff.
//
// Only transient failures are retried: rate limiting, timeouts, network failures and 5xx class
// server errors. Everything else is returned on first occurrence. When the attempts run out the
// last error is returned unchanged, so callers see the provider's error and not a retry wrapper.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/casualjim/hoot/pkg/slogx"
)

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = time.Second
	DefaultMaxDelay     = 10 * time.Second

	// MaxJitter bounds the random delay added to every backoff.
	MaxJitter = 200 * time.Millisecond
)

// Policy configures retry behavior with exponential backoff.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// OnRetry is called before sleeping for a retry, attempt is the 1-based attempt that failed.
	OnRetry func(err error, attempt int, delay time.Duration)
}

// DefaultPolicy returns 3 attempts starting at 1s and capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
	}
}

// normalized fills in defaults for unset fields.
func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = p.InitialDelay
	}
	return p
}

// Backoff is the delay after the 1-based attempt k failed, without jitter:
// min(InitialDelay * 2^(k-1), MaxDelay).
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	delay := p.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay || delay <= 0 {
			return p.MaxDelay
		}
	}
	return min(delay, p.MaxDelay)
}

// Delay is Backoff plus a uniform jitter in [0, MaxJitter).
func (p Policy) Delay(attempt int) time.Duration {
	return p.Backoff(attempt) + jitter()
}

var jitter = func() time.Duration {
	return rand.N(MaxJitter)
}

var after = time.After

// Do runs op until it succeeds, fails with a non-retryable error or the attempts run out.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	policy = policy.normalized()

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts || ctx.Err() != nil || !IsRetryable(err) {
			break
		}

		delay := policy.Delay(attempt)
		slog.Warn("retrying completion request",
			slogx.Attempt(attempt),
			slogx.Delay(delay),
			slogx.Error(err),
		)
		if policy.OnRetry != nil {
			policy.OnRetry(err, attempt, delay)
		}

		select {
		case <-ctx.Done():
			return zero, lastErr
		case <-after(delay):
		}
	}
	return zero, lastErr
}

// Do0 is Do for operations without a result value.
func Do0(ctx context.Context, policy Policy, op func(context.Context) error) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Permanent marks err as non-retryable regardless of its message.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &classified{err: err, retryable: false}
}

// Transient marks err as retryable regardless of its message.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &classified{err: err, retryable: true}
}

type classified struct {
	err       error
	retryable bool
}

func (c *classified) Error() string   { return c.err.Error() }
func (c *classified) Unwrap() error   { return c.err }
func (c *classified) Retryable() bool { return c.retryable }

var _ interface{ Retryable() bool } = (*classified)(nil)

func explicit(err error) (bool, bool) {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable(), true
	}
	return false, false
}
