package splits

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"results-ingest/core/database"
	"results-ingest/core/metrics"
	"results-ingest/core/reconcile"
	"results-ingest/core/utils"
	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/models"

	"go.uber.org/zap"
)

// Store is the persistence the controller needs.
type Store interface {
	ListSplits(ctx context.Context, competitorID uint) ([]models.Split, error)
	ReplaceSplits(ctx context.Context, competitorID uint, splits []models.Split, opts database.TxOptions) error
}

// Summary reports what one reconciliation changed.
type Summary struct {
	Created    int
	Updated    int
	Deleted    int
	ChangeMade bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRetryPolicy overrides reconcile.DefaultRetryPolicy.
func WithRetryPolicy(p reconcile.RetryPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithTxOptions sets the wait and execution bounds of the replacement transaction.
func WithTxOptions(opts database.TxOptions) Option {
	return func(c *Controller) {
		c.txOpts.MaxWait = opts.MaxWait
		c.txOpts.Timeout = opts.Timeout
	}
}

// WithMetrics records reconciliation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// Controller reconciles split times. Reconciliations of the same competitor
// never overlap within one Controller.
type Controller struct {
	store   Store
	locks   *reconcile.KeyLock[uint]
	policy  reconcile.RetryPolicy
	txOpts  database.TxOptions
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewController creates a Controller with its own lock registry.
func NewController(store Store, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:  store,
		locks:  reconcile.NewKeyLock[uint](),
		policy: reconcile.DefaultRetryPolicy,
		txOpts: database.TxOptions{Isolation: sql.LevelReadCommitted},
		logger: logger.Named("splits"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reconcile makes the stored splits of competitorID equal to incoming. When
// they already are, no write is made.
func (c *Controller) Reconcile(ctx context.Context, competitorID uint, incoming []extract.SplitRecord) (Summary, error) {
	splits := Normalize(incoming)

	var summary Summary
	err := c.locks.Do(ctx, competitorID, func() error {
		var err error
		summary, err = c.reconcileLocked(ctx, competitorID, splits)
		return err
	})
	if err != nil {
		c.metrics.SplitReconciled(metrics.OutcomeFailed)
		return Summary{}, err
	}

	if summary.ChangeMade {
		c.metrics.SplitReconciled(metrics.OutcomeUpdated)
	} else {
		c.metrics.SplitReconciled(metrics.OutcomeUnchanged)
	}
	return summary, nil
}

func (c *Controller) reconcileLocked(ctx context.Context, competitorID uint, splits []models.Split) (Summary, error) {
	var summary Summary

	onRetry := func(attempt int, err error) {
		c.metrics.WriteConflict()
		c.metrics.Retry()
		c.logger.Warn("Split write conflict, retrying",
			zap.Uint("competitor_id", competitorID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	attempts, err := reconcile.Retry(ctx, c.policy, database.IsConflict, onRetry, func(int) error {
		stored, err := c.store.ListSplits(ctx, competitorID)
		if err != nil {
			return fmt.Errorf("failed to load splits: %w", err)
		}

		diff := reconcile.ThreeWay(stored, splits, controlCode, sameTime)
		summary = Summary{
			Created:    len(diff.Create),
			Updated:    len(diff.Update),
			Deleted:    len(diff.Delete),
			ChangeMade: !diff.Empty(),
		}
		if diff.Empty() {
			return nil
		}

		if err := c.store.ReplaceSplits(ctx, competitorID, splits, c.txOpts); err != nil {
			return fmt.Errorf("failed to replace splits: %w", err)
		}
		c.logger.Debug("Splits replaced",
			zap.Uint("competitor_id", competitorID),
			zap.Int("changes", diff.Changes()),
			zap.Int("splits", len(splits)),
		)
		return nil
	})
	if err != nil {
		if database.IsConflict(err) && attempts >= c.policy.Attempts() {
			c.metrics.WriteConflict()
			c.logger.Error("Split reconciliation gave up after write conflicts",
				zap.Uint("competitor_id", competitorID),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
		}
		return Summary{}, fmt.Errorf("competitor %d: %w", competitorID, err)
	}
	return summary, nil
}

// Normalize drops splits without an integer control code, keeps the last
// split of each code and sorts by code. Times are rounded to whole seconds.
func Normalize(incoming []extract.SplitRecord) []models.Split {
	byCode := make(map[int]models.Split, len(incoming))
	for _, rec := range incoming {
		code, ok := utils.ToInt(rec.ControlCode)
		if !ok {
			continue
		}
		s := models.Split{ControlCode: code}
		if rec.Time != nil && !math.IsNaN(*rec.Time) {
			t := int(math.Round(*rec.Time))
			s.Time = &t
		}
		byCode[code] = s
	}

	splits := make([]models.Split, 0, len(byCode))
	for _, s := range byCode {
		splits = append(splits, s)
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].ControlCode < splits[j].ControlCode })
	return splits
}

func controlCode(s models.Split) int {
	return s.ControlCode
}

func sameTime(a, b models.Split) bool {
	if a.Time == nil || b.Time == nil {
		return a.Time == nil && b.Time == nil
	}
	return *a.Time == *b.Time
}
