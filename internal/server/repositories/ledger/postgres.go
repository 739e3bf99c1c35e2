package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/dbx"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetCooldown(ctx context.Context, userID int64) (time.Time, error) {
	query :=
		`SELECT can_get_points_time FROM users
		 WHERE id = $1
		 FOR UPDATE
		 `

	var t time.Time
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Credit(ctx context.Context, userID int64, delta int64, nextCollect time.Time) (int64, error) {
	query :=
		`UPDATE users SET points = points + $2, can_get_points_time = $3
		 WHERE id = $1
		 RETURNING points
		 `

	var points int64
	if err := r.db.QueryRowContext(ctx, query, userID, delta, nextCollect).Scan(&points); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return points, nil
}

// Debit relies on the WHERE clause, not on a prior read, so two concurrent
// debits can never both pass the balance check.
func (r *PostgresRepository) Debit(ctx context.Context, userID int64, delta int64) (int64, error) {
	query :=
		`UPDATE users SET points = points - $2
		 WHERE id = $1 AND points >= $2
		 RETURNING points
		 `

	var points int64
	if err := r.db.QueryRowContext(ctx, query, userID, delta).Scan(&points); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrInsufficientFunds
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return points, nil
}

func (r *PostgresRepository) Balance(ctx context.Context, userID int64) (*models.Balance, error) {
	query :=
		`SELECT points, can_get_points_time FROM users
		 WHERE id = $1
		 `

	b := &models.Balance{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&b.Points, &b.CanGetPointsTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}
