package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Veraticus/budgets/internal/service"
)

var (
	// ErrRateLimit indicates that the store throttled the request.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// Retry defaults applied to zero RetryOptions fields.
const (
	DefaultRetryAttempts   = 3
	DefaultRetryDelay      = 100 * time.Millisecond
	DefaultRetryMaxDelay   = 30 * time.Second
	DefaultRetryMultiplier = 2.0
)

// RetryableError marks a store failure as transient or permanent and may
// carry the store's requested back-off.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
	Retryable  bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// WithRetry runs operation until it succeeds, fails with an error that
// IsRetryable rejects, or runs out of attempts. When ctx ends during a
// back-off the context error is returned joined with the last failure.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	opts = retryDefaults(opts)

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := backoff(opts, attempt, err)
		opts.Logger.Warn("Store call failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ctx.Err(), err)
		case <-timer.C:
		}
	}
}

func retryDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultRetryAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultRetryDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultRetryMaxDelay
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = DefaultRetryMultiplier
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// backoff returns the wait before the attempt following attempt. A
// RetryAfter hint replaces the exponential delay; both are capped at
// MaxDelay.
func backoff(opts service.RetryOptions, attempt int, err error) time.Duration {
	var retryable *RetryableError
	if errors.As(err, &retryable) && retryable.RetryAfter > 0 {
		return min(retryable.RetryAfter, opts.MaxDelay)
	}

	d := float64(opts.InitialDelay) * math.Pow(opts.Multiplier, float64(attempt-1))
	if d >= float64(opts.MaxDelay) {
		return opts.MaxDelay
	}
	return time.Duration(d)
}
