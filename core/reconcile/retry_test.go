package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errConflict = errors.New("conflict")

func isConflict(err error) bool { return errors.Is(err, errConflict) }

var fastPolicy = RetryPolicy{MaxAttempts: 6, BaseDelay: time.Microsecond, MaxJitter: time.Microsecond}

func TestRetry_SucceedsAfterConflicts(t *testing.T) {
	var retries []int
	attempts, err := Retry(context.Background(), fastPolicy, isConflict,
		func(attempt int, err error) { retries = append(retries, attempt) },
		func(attempt int) error {
			if attempt <= 5 {
				return errConflict
			}
			return nil
		})

	assert.NoError(t, err)
	assert.Equal(t, 6, attempts)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, retries)
}

func TestRetry_Exhausted(t *testing.T) {
	calls := 0
	retries := 0
	attempts, err := Retry(context.Background(), fastPolicy, isConflict,
		func(int, error) { retries++ },
		func(int) error {
			calls++
			return errConflict
		})

	assert.ErrorIs(t, err, errConflict)
	assert.Equal(t, 6, attempts)
	assert.Equal(t, 6, calls)
	assert.Equal(t, 5, retries)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	other := errors.New("constraint")
	calls := 0
	attempts, err := Retry(context.Background(), fastPolicy, isConflict, nil, func(int) error {
		calls++
		return other
	})

	assert.ErrorIs(t, err, other)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := RetryPolicy{MaxAttempts: 6, BaseDelay: time.Hour}

	attempts, err := Retry(ctx, slow, isConflict, func(int, error) { cancel() }, func(int) error {
		return errConflict
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errConflict)
	assert.ErrorContains(t, err, "conflict")
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_Attempts(t *testing.T) {
	assert.Equal(t, 6, DefaultRetryPolicy.Attempts())
	assert.Equal(t, 1, RetryPolicy{}.Attempts())
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxJitter: 50 * time.Millisecond}
	for attempt := 1; attempt <= 5; attempt++ {
		d := p.Backoff(attempt)
		base := time.Duration(attempt) * 100 * time.Millisecond
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+50*time.Millisecond)
	}

	assert.Equal(t, 300*time.Millisecond, RetryPolicy{BaseDelay: 100 * time.Millisecond}.Backoff(3))
}
