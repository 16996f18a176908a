// Package httputil provides the retry policy shared by mip's network
// operations (index fetches and archive downloads).
package httputil

import (
	"context"
	"errors"
	"time"
)

// Defaults for [RetryWithBackoff]. Three attempts with a doubling delay
// keeps a flaky fetch under ~3 seconds of waiting before giving up.
const (
	defaultAttempts     = 3
	defaultInitialDelay = time.Second
)

// RetryableError marks an error as transient. Wrap network timeouts and 5xx
// responses with this type so [Retry] attempts the operation again; anything
// else fails on the first attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times, doubling the delay after each
// failed attempt. Only errors wrapped in [RetryableError] are retried;
// others are returned immediately. Returns the last error if every attempt
// fails, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff runs fn under the default retry policy.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, defaultAttempts, defaultInitialDelay, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
