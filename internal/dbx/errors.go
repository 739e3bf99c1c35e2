package dbx

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories care about.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// IsSerializationFailure reports whether err is a Postgres serialization
// failure or deadlock, both of which are safe to retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// IsUniqueViolation reports whether err violates a unique constraint. When
// constraint is non-empty it must match the violated constraint's name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// Classify wraps retryable conflicts in common.ErrConflict and returns every
// other error unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, common.ErrConflict) {
		return err
	}
	if IsSerializationFailure(err) {
		return fmt.Errorf("%w: %w", common.ErrConflict, err)
	}
	return err
}
