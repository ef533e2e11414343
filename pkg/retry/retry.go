package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// ErrMaxRetriesExceeded wraps the last error once the policy is exhausted
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Policy describes how many times and how long to wait between attempts
type Policy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	Multiplier    float64
	RetryableFunc func(error) bool
}

// DefaultPolicy returns three retries with exponential backoff from one second
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

// Validate checks the policy for impossible values
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries must be >= 0, got %d", p.MaxRetries)
	}
	if p.BaseDelay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("delays must be >= 0")
	}
	if p.Multiplier != 0 && p.Multiplier < 1 {
		return fmt.Errorf("multiplier must be >= 1, got %v", p.Multiplier)
	}
	return nil
}

// Delayer is implemented by errors that carry a server-supplied wait time.
// When present it replaces the computed backoff.
type Delayer interface {
	RetryAfter() time.Duration
}

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier handles retry logic
type Retrier struct {
	policy Policy
	logger *zap.Logger
	sleep  Sleeper
}

// Option customises a Retrier
type Option func(*Retrier)

// WithSleeper replaces the wait implementation, mostly for tests
func WithSleeper(s Sleeper) Option {
	return func(r *Retrier) {
		if s != nil {
			r.sleep = s
		}
	}
}

// NewRetrier creates a new retrier
func NewRetrier(policy Policy, logger *zap.Logger, opts ...Option) *Retrier {
	if err := policy.Validate(); err != nil {
		panic(fmt.Sprintf("invalid retry policy: %v", err))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Retrier{
		policy: policy,
		logger: logger,
		sleep:  ContextSleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the retrier's policy
func (r *Retrier) Policy() Policy {
	return r.policy
}

// Do runs operation until it succeeds, returns a non-retryable error or the
// policy is exhausted. Attempts are strictly sequential; attempt starts at 0.
func (r *Retrier) Do(ctx context.Context, operation func(attempt int) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation(attempt)
		if lastErr == nil {
			if attempt > 0 {
				r.logger.Info("Operation succeeded after retries",
					zap.Int("attempt", attempt),
					zap.Int("max_retries", r.policy.MaxRetries))
			}
			return nil
		}

		if !r.isRetryable(lastErr) {
			return lastErr
		}

		if attempt >= r.policy.MaxRetries {
			r.logger.Warn("Max retries exceeded",
				zap.Error(lastErr),
				zap.Int("attempts", attempt+1),
				zap.Int("max_retries", r.policy.MaxRetries))
			return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
		}

		wait := r.delay(attempt+1, lastErr)
		r.logger.Debug("Retrying operation",
			zap.Error(lastErr),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", r.policy.MaxRetries),
			zap.Duration("backoff", wait))

		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

func (r *Retrier) isRetryable(err error) bool {
	if r.policy.RetryableFunc != nil {
		return r.policy.RetryableFunc(err)
	}
	var d Delayer
	return errors.As(err, &d)
}

func (r *Retrier) delay(attempt int, err error) time.Duration {
	var d Delayer
	if errors.As(err, &d) {
		return d.RetryAfter()
	}
	return r.Backoff(attempt)
}

// Backoff returns the exponential delay for the given 1-based attempt
func (r *Retrier) Backoff(attempt int) time.Duration {
	multiplier := r.policy.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	wait := time.Duration(float64(r.policy.BaseDelay) * math.Pow(multiplier, float64(attempt-1)))
	if r.policy.MaxDelay > 0 && wait > r.policy.MaxDelay {
		wait = r.policy.MaxDelay
	}
	return wait
}
