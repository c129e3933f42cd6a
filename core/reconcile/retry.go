package reconcile

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryPolicy bounds retries of a conflicting operation.
type RetryPolicy struct {
	// MaxAttempts counts the first attempt.
	MaxAttempts int
	// BaseDelay is multiplied by the attempt number.
	BaseDelay time.Duration
	// MaxJitter bounds the random delay added to each backoff.
	MaxJitter time.Duration
}

// DefaultRetryPolicy is six attempts with linear backoff and up to 100ms jitter.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 6,
	BaseDelay:   100 * time.Millisecond,
	MaxJitter:   100 * time.Millisecond,
}

// Attempts is MaxAttempts, at least one.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// Backoff returns the sleep before the attempt following the given one.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay * time.Duration(attempt)
	if p.MaxJitter > 0 {
		d += rand.N(p.MaxJitter)
	}
	return d
}

// Retry calls fn until it succeeds, fails with an error retryable rejects, or
// MaxAttempts is reached. onRetry runs before each sleep, never after the
// last attempt. It returns the number of attempts made and the last error.
// When ctx ends during a backoff the error wraps ctx.Err() instead.
func Retry(
	ctx context.Context,
	p RetryPolicy,
	retryable func(error) bool,
	onRetry func(attempt int, err error),
	fn func(attempt int) error,
) (int, error) {
	maxAttempts := p.Attempts()

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(attempt)
		if err == nil || !retryable(err) || attempt >= maxAttempts {
			return attempt, err
		}

		if onRetry != nil {
			onRetry(attempt, err)
		}

		timer := time.NewTimer(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, fmt.Errorf("retry interrupted after attempt %d (%v): %w", attempt, err, ctx.Err())
		case <-timer.C:
		}
	}
}
