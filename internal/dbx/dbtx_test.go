package dbx

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ledger (id INTEGER PRIMARY KEY, points INTEGER NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ledger`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO ledger(points) VALUES (1)`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO ledger(points) VALUES (1)`)
		require.NoError(t, e)
		return errors.New("insufficient funds")
	})
	require.EqualError(t, err, "insufficient funds")
	require.Equal(t, 0, countRows(t, db), "partial writes must not survive")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		require.NotNil(t, recover(), "panic must propagate")
		require.Equal(t, 0, countRows(t, db))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO ledger(points) VALUES (1)`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_RollbackOnCancel(t *testing.T) {
	db := setupDB(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO ledger(points) VALUES (1)`)
		require.NoError(t, e)
		cancel()
		return ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, countRows(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err)
}
