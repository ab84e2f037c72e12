package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestExponentialBackoff(t *testing.T) {
	backoff := ExponentialBackoff(time.Second, 30*time.Second, 2.0)

	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, 2*time.Second, backoff(2))
	assert.Equal(t, 4*time.Second, backoff(3))
	// Capped at the maximum.
	assert.Equal(t, 30*time.Second, backoff(10))
}

func TestGraderPolicySchedule(t *testing.T) {
	p := GraderPolicy()

	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Backoff(1))
	assert.Equal(t, 2*time.Second, p.Backoff(2))
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	p := GraderPolicy()
	p.Sleep = noSleep

	var delays []time.Duration
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		delays = append(delays, delay)
	}

	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return Retryable(errors.New("service unavailable"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	p := GraderPolicy()
	p.Sleep = noSleep

	cause := errors.New("timeout")
	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Retryable(cause)
	})

	assert.Equal(t, 3, attempts)
	// The retry marker is unwrapped before returning.
	assert.Equal(t, cause, err)
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	p := GraderPolicy()
	p.Sleep = noSleep

	cause := errors.New("invalid answer format")
	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(cause)
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, cause, err)
}

func TestDo_UnmarkedErrorNotRetried(t *testing.T) {
	p := GraderPolicy()
	p.Sleep = noSleep

	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("plain failure")
	})

	assert.Equal(t, 1, attempts)
	assert.EqualError(t, err, "plain failure")
}

func TestDo_RetryIfOverridesMarkers(t *testing.T) {
	p := NewPolicy(4, ConstantBackoff(0))
	p.Sleep = noSleep
	p.RetryIf = func(err error) bool { return err.Error() == "flaky" }

	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("flaky")
	})

	assert.Equal(t, 4, attempts)
	assert.EqualError(t, err, "flaky")
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	p := NewPolicy(3, ConstantBackoff(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cause := errors.New("unreachable")

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := p.Do(ctx, func(ctx context.Context) error {
		return Retryable(cause)
	})

	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorContains(t, err, "unreachable")
}

func TestDoWithData(t *testing.T) {
	p := NewPolicy(2, ConstantBackoff(0))
	p.Sleep = noSleep

	attempts := 0
	result, err := DoWithData(context.Background(), p, func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", Retryable(errors.New("try again"))
		}
		return "graded", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "graded", result)
	assert.Equal(t, 2, attempts)
}

func TestMarkerHelpers(t *testing.T) {
	base := errors.New("boom")

	assert.True(t, IsRetryable(Retryable(base)))
	assert.False(t, IsRetryable(Permanent(base)))
	assert.True(t, IsPermanent(Permanent(base)))
	assert.False(t, IsPermanent(base))
	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))
	// Wrapped errors stay inspectable with errors.Is.
	assert.True(t, errors.Is(Retryable(base), base))
}
