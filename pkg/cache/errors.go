package cache

import (
	"context"
	"errors"
	"time"

	"github.com/cenk/backoff"
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// DefaultRetries is the retry count used when the configuration sets none.
const DefaultRetries = 2

// RetryWithBackoff calls fn until it succeeds, returns an error not wrapped
// with Retryable, or retries are exhausted. Delays grow exponentially from
// 250ms. A cancelled context stops the loop and is returned as the error when
// it ends the first attempt.
func RetryWithBackoff(ctx context.Context, retries int, fn func() error) error {
	if retries < 0 {
		retries = 0
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 4 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := fn()
		if err == nil || IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
