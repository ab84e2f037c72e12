// Package retry provides retry functionality with exponential backoff.
// Designed for resilient external service calls (grading API, persistence).
// No external dependencies - uses only standard library.
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryableError indicates that an error is transient and worth retrying.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps an error to indicate it should be retried.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var retryableErr *RetryableError
	return errors.As(err, &retryableErr)
}

// PermanentError indicates that an error should not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps an error to indicate it should not be retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent checks if an error is permanent (should not be retried).
func IsPermanent(err error) bool {
	var permanentErr *PermanentError
	return errors.As(err, &permanentErr)
}

// BackoffFunc returns the delay to wait after the given attempt (1-based).
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff returns a BackoffFunc computing
// min(initial * multiplier^(attempt-1), max).
func ExponentialBackoff(initial, max time.Duration, multiplier float64) BackoffFunc {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		d := float64(initial) * math.Pow(multiplier, float64(attempt-1))
		if d > float64(max) {
			d = float64(max)
		}
		return time.Duration(d)
	}
}

// ConstantBackoff returns a BackoffFunc with a fixed delay.
func ConstantBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// Policy describes how an operation is retried. The zero value is not usable;
// construct one with NewPolicy or a preset.
type Policy struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// Backoff computes the delay after a failed attempt.
	Backoff BackoffFunc

	// RetryIf decides whether an error should be retried. If nil, only
	// errors wrapped with Retryable are retried.
	RetryIf func(error) bool

	// OnRetry is called before each retry attempt. Useful for logging.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Sleep is the wait function; overridable in tests. Defaults to a
	// context-aware timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a Policy with the given attempt budget and backoff.
func NewPolicy(maxAttempts int, backoff BackoffFunc) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Policy{MaxAttempts: maxAttempts, Backoff: backoff}
}

// GraderPolicy returns the retry policy for answer grading calls:
// 3 attempts total (2 retries), delays of 1s then 2s, capped at 30s.
// No jitter - the backoff schedule is deterministic.
func GraderPolicy() Policy {
	return NewPolicy(3, ExponentialBackoff(time.Second, 30*time.Second, 2.0))
}

// StorePolicy returns the retry policy for persistence operations.
func StorePolicy() Policy {
	return NewPolicy(3, ExponentialBackoff(50*time.Millisecond, time.Second, 2.0))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do executes the operation under the policy. The operation should return a
// RetryableError for transient failures and a PermanentError (or any
// unwrapped error, unless RetryIf says otherwise) for failures that must not
// be retried. The returned error is unwrapped from its retry marker.
func (p Policy) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsPermanent(err) {
			return errors.Unwrap(err)
		}

		shouldRetry := IsRetryable(err)
		if p.RetryIf != nil {
			shouldRetry = p.RetryIf(err)
		}
		if !shouldRetry {
			return err
		}

		if attempt == maxAttempts {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return lastErr
			}
		}
	}

	// Budget exhausted; hand back the underlying error.
	if IsRetryable(lastErr) {
		return errors.Unwrap(lastErr)
	}
	return lastErr
}

// DoWithData is a helper for operations that return data.
func DoWithData[T any](ctx context.Context, p Policy, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	return result, err
}
