// Package dbx provides the small database abstractions repositories share:
// DBTX, implemented by both *sql.DB and *sql.Tx, a helper that runs a
// function inside a transaction, and Postgres error classification.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Serializable is the option set for operations that touch the shared pool.
var Serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// ReadCommitted is enough for single-statement atomic updates guarded by
// WHERE clauses, which Postgres re-evaluates after a row lock wait.
var ReadCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// WithTx begins a transaction, runs fn with the transactional handle, then
// commits on success or rolls back on error or panic. Panics are rethrown.
// A cancelled ctx makes database/sql roll the transaction back.
//
// Serialization failures and deadlocks, whether raised by fn or by the
// commit, come back wrapped in common.ErrConflict.
//
//	err := dbx.WithTx(ctx, db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			err = Classify(err)
			return
		}
		err = Classify(tx.Commit())
	}()

	err = fn(ctx, tx)
	return err
}
