// Package reconcile provides the generic building blocks used to merge incoming
// feed data into stored state.
//
// # Components
//
//   - ForEach: a bounded batch executor. A fixed pool of workers pulls items
//     from a shared index, every item runs exactly once and failures are
//     recorded per item in a BatchReport instead of cancelling the batch.
//   - KeyLock: a registry of per-key FIFO sections. A second caller for the
//     same key queues behind the first. Idle keys are removed from the registry.
//   - Retry: a bounded retry loop with linear backoff plus jitter, used for
//     transient store write conflicts.
//   - ThreeWay: a keyed diff of a stored set against an incoming set producing
//     the create, update and delete partitions.
//
// # Usage Example
//
//	locks := reconcile.NewKeyLock[uint]()
//	report := reconcile.ForEach(ctx, competitors, 8, func(ctx context.Context, i int, c Input) error {
//	    return locks.Do(ctx, c.ID, func() error {
//	        _, err := reconcile.Retry(ctx, reconcile.DefaultRetryPolicy, database.IsConflict, nil, func(int) error {
//	            return replace(ctx, c)
//	        })
//	        return err
//	    })
//	})
//	if err := report.Err(); err != nil {
//	    log.Warn("partial failure", zap.Error(err))
//	}
package reconcile
