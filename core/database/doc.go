// Package database handles database connections, store error classification,
// bounded transactions and schema inspection.
//
// # Connect
//
// Connect opens a GORM connection for the configured driver: MySQL, PostgreSQL,
// or SQLite (local runs and tests).
//
// # Error kinds
//
// Driver errors are classified by their codes into a Kind. KindConflict marks
// transient write conflicts (deadlocks, serialization failures, lock wait
// timeouts, busy databases and transaction slot timeouts) that callers may retry.
//
// # Transactions
//
// Transactor runs a function in a transaction with an isolation level, a bound
// on the wait for a free slot and a bound on execution time.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns verify that migrated tables carry the
// columns the models expect.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	tr := database.NewTransactor(db, cfg.Database.MaxOpenConns)
//	err = tr.Transact(ctx, database.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
package database
