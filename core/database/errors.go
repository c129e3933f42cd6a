package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Kind classifies a store error for callers that need to branch on it.
type Kind int

const (
	KindOther Kind = iota
	// KindConflict is a transient write conflict: serialization failure,
	// deadlock, lock wait timeout or no transaction slot within the wait budget.
	KindConflict
	KindNotFound
	KindDuplicate
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	default:
		return "other"
	}
}

// ErrTxSlotTimeout is returned when no transaction slot frees up within the max wait.
var ErrTxSlotTimeout = errors.New("timed out waiting for a transaction slot")

// MySQL server error numbers.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	mysqlDuplicateEntry  = 1062
)

// Error is a store error carrying its classified Kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap classifies err and annotates it with op. It returns nil for a nil error
// and keeps the kind of an already classified error.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Op: op, Kind: existing.Kind, Err: err}
	}
	return &Error{Op: op, Kind: Classify(err), Err: err}
}

// KindOf returns the kind of err, classifying raw driver errors on the fly.
func KindOf(err error) Kind {
	if err == nil {
		return KindOther
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Classify(err)
}

// IsConflict reports whether err is a retryable write conflict.
func IsConflict(err error) bool {
	return err != nil && KindOf(err) == KindConflict
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// Classify maps driver and gorm errors to a Kind by their codes.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrTxSlotTimeout):
		return KindConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindDuplicate
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDeadlock, mysqlLockWaitTimeout:
			return KindConflict
		case mysqlDuplicateEntry:
			return KindDuplicate
		}
		return KindOther
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return KindConflict
		case pgerrcode.UniqueViolation:
			return KindDuplicate
		}
		return KindOther
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch {
		case liteErr.Code == sqlite3.ErrBusy, liteErr.Code == sqlite3.ErrLocked:
			return KindConflict
		case liteErr.ExtendedCode == sqlite3.ErrConstraintUnique, liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return KindDuplicate
		}
		return KindOther
	}

	return KindOther
}
