package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by the caches and the API clients built on them.
var (
	ErrNotFound  = errors.New("not found")
	ErrNetwork   = errors.New("network error")
	ErrCacheMiss = errors.New("cache miss")
)

// RetryableError marks a transient failure. After, when positive, is the
// wait the server asked for (Retry-After).
type RetryableError struct {
	Err   error
	After time.Duration
}

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	return RetryAfter(err, 0)
}

// RetryAfter marks err as transient, to be retried no sooner than after.
func RetryAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is marked transient.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

var (
	retryAttempts = 3
	retryDelay    = time.Second
	// maxRetryWait caps server-requested waits; a longer Retry-After fails
	// the lookup instead of stalling the run.
	maxRetryWait = 30 * time.Second
)

// RetryWithBackoff calls fn until it succeeds, returns an error that is not
// retryable, or runs out of attempts. The delay starts at one second and
// doubles; a Retry-After hint replaces it for the next wait.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || attempt == retryAttempts {
			return err
		}

		wait := delay
		if re.After > 0 {
			if re.After > maxRetryWait {
				return err
			}
			wait = re.After
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
}
