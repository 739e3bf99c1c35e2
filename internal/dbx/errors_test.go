package dbx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsSerializationFailure(fmt.Errorf("db error: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsSerializationFailure(errors.New("40001")))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_name_key"})

	assert.True(t, IsUniqueViolation(err, "users_name_key"))
	assert.True(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(err, "sessions_pkey"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "40001"}, ""))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, Classify(plain))

	conflict := Classify(&pgconn.PgError{Code: "40001"})
	assert.ErrorIs(t, conflict, common.ErrConflict)
	assert.True(t, IsSerializationFailure(conflict), "driver error stays reachable")

	assert.Same(t, conflict, Classify(conflict))
}

func TestWithTx_CommitSerializationFailureIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})

	err = WithTx(context.Background(), db, Serializable, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.ErrorIs(t, err, common.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_FnSerializationFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return fmt.Errorf("db error: %w", &pgconn.PgError{Code: "40P01"})
	})
	require.ErrorIs(t, err, common.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}
