package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type waitErr struct{ d time.Duration }

func (e waitErr) Error() string             { return "wait" }
func (e waitErr) RetryAfter() time.Duration { return e.d }

func recordingSleeper(waits *[]time.Duration) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestRetrier_UsesServerDelay(t *testing.T) {
	var waits []time.Duration
	r := NewRetrier(DefaultPolicy(), zap.NewNop(), WithSleeper(recordingSleeper(&waits)))

	calls := 0
	err := r.Do(context.Background(), func(attempt int) error {
		assert.Equal(t, calls, attempt)
		calls++
		if calls < 3 {
			return waitErr{d: 2 * time.Second}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, waits)
}

func TestRetrier_Exhausted(t *testing.T) {
	var waits []time.Duration
	r := NewRetrier(DefaultPolicy(), zap.NewNop(), WithSleeper(recordingSleeper(&waits)))

	calls := 0
	err := r.Do(context.Background(), func(int) error {
		calls++
		return waitErr{d: time.Second}
	})

	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	var last waitErr
	assert.True(t, errors.As(err, &last))
	assert.Equal(t, 4, calls)
	assert.Len(t, waits, 3)
}

func TestRetrier_NonRetryable(t *testing.T) {
	r := NewRetrier(DefaultPolicy(), zap.NewNop())
	boom := errors.New("boom")

	calls := 0
	err := r.Do(context.Background(), func(int) error {
		calls++
		return boom
	})

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestRetrier_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetrier(DefaultPolicy(), zap.NewNop(), WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	err := r.Do(ctx, func(int) error { return waitErr{d: time.Second} })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrier_Backoff(t *testing.T) {
	r := NewRetrier(Policy{MaxRetries: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}, nil)

	assert.Equal(t, 100*time.Millisecond, r.Backoff(1))
	assert.Equal(t, 400*time.Millisecond, r.Backoff(3))
	assert.Equal(t, time.Second, r.Backoff(10))
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.Error(t, Policy{MaxRetries: -1}.Validate())
	assert.Error(t, Policy{Multiplier: 0.5}.Validate())
	assert.Panics(t, func() { NewRetrier(Policy{MaxRetries: -1}, nil) })
}

func TestContextSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ContextSleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, ContextSleep(context.Background(), time.Millisecond))
}
