package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

const (
	DefaultTxMaxWait = 10 * time.Second
	DefaultTxTimeout = 20 * time.Second
)

// TxOptions bounds a transaction.
type TxOptions struct {
	// Isolation is applied on drivers that support it.
	Isolation sql.IsolationLevel
	// MaxWait bounds the wait for a free transaction slot.
	MaxWait time.Duration
	// Timeout bounds the execution of the transaction body and commit.
	Timeout time.Duration
}

func (o TxOptions) withDefaults() TxOptions {
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultTxMaxWait
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTxTimeout
	}
	return o
}

// Transactor runs bounded transactions. The number of concurrently open
// transactions is capped by slots, normally the size of the connection pool.
type Transactor struct {
	db    *gorm.DB
	slots *semaphore.Weighted
}

// NewTransactor creates a Transactor allowing up to slots concurrent transactions.
func NewTransactor(db *gorm.DB, slots int) *Transactor {
	if slots <= 0 {
		slots = 1
	}
	return &Transactor{db: db, slots: semaphore.NewWeighted(int64(slots))}
}

// Transact runs fn inside a transaction. Failing to get a slot within MaxWait
// is reported as a conflict so callers retry it like any other contention.
func (t *Transactor) Transact(ctx context.Context, opts TxOptions, fn func(tx *gorm.DB) error) error {
	opts = opts.withDefaults()

	waitCtx, cancelWait := context.WithTimeout(ctx, opts.MaxWait)
	err := t.slots.Acquire(waitCtx, 1)
	cancelWait()
	if err != nil {
		if ctx.Err() != nil {
			return Wrap("transaction slot", ctx.Err())
		}
		return &Error{Op: "transaction slot", Kind: KindConflict, Err: ErrTxSlotTimeout}
	}
	defer t.slots.Release(1)

	execCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var txOpts []*sql.TxOptions
	if opts.Isolation != sql.LevelDefault && t.db.Dialector.Name() != DriverSQLite {
		txOpts = append(txOpts, &sql.TxOptions{Isolation: opts.Isolation})
	}

	err = t.db.WithContext(execCtx).Transaction(fn, txOpts...)
	if err == nil {
		return nil
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return Wrap("transaction", errors.Join(errors.New("transaction exceeded its timeout"), err))
	}
	return Wrap("transaction", err)
}
