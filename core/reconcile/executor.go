package reconcile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
)

// DefaultConcurrency is the worker budget used when none is given.
const DefaultConcurrency = 8

// ItemError records the failure of a single batch item.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

// BatchReport summarizes a ForEach run.
type BatchReport struct {
	Total     int
	Succeeded int
	// Failures is ordered by item index.
	Failures []ItemError
}

// Err combines all item failures, or returns nil when every item succeeded.
func (r *BatchReport) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Failed reports whether the item at index failed.
func (r *BatchReport) Failed(index int) bool {
	for _, f := range r.Failures {
		if f.Index == index {
			return true
		}
	}
	return false
}

// ForEach runs worker over items with at most maxConcurrency workers pulling
// from a shared index. Each item is started exactly once and a failing item
// never stops its siblings. It returns once every started item has settled.
// Items not started before ctx is done are recorded as failed with ctx.Err().
func ForEach[T any](ctx context.Context, items []T, maxConcurrency int, worker func(ctx context.Context, index int, item T) error) *BatchReport {
	report := &BatchReport{Total: len(items)}
	if len(items) == 0 {
		return report
	}

	if maxConcurrency <= 0 {
		maxConcurrency = DefaultConcurrency
	}
	numWorkers := min(maxConcurrency, len(items))

	errs := make([]error, len(items))
	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for {
				idx := int(next.Add(1) - 1)
				if idx >= len(items) {
					return
				}
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				errs[idx] = runItem(ctx, idx, items[idx], worker)
			}
		}()
	}

	wg.Wait()

	for idx, err := range errs {
		if err != nil {
			report.Failures = append(report.Failures, ItemError{Index: idx, Err: err})
			continue
		}
		report.Succeeded++
	}
	return report
}

func runItem[T any](ctx context.Context, idx int, item T, worker func(context.Context, int, T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return worker(ctx, idx, item)
}
