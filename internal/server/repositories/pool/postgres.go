package pool

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

// Take decrements and checks in one statement; the row lock it takes is
// what keeps two collectors from both spending the last point.
func (r *PostgresRepository) Take(ctx context.Context, now time.Time) (int64, error) {
	query :=
		`UPDATE points_pool SET points = points - 1
		 WHERE id = 1 AND open_at <= $1 AND points > 0
		 RETURNING points
		 `

	var left int64
	if err := r.db.QueryRowContext(ctx, query, now).Scan(&left); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrPoolClosed
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return left, nil
}

func (r *PostgresRepository) Refill(ctx context.Context, capacity int64, openAt time.Time) error {
	query :=
		`UPDATE points_pool SET points = $1, open_at = $2
		 WHERE id = 1
		 `

	res, err := r.db.ExecContext(ctx, query, capacity, openAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("db error: points_pool row missing")
	}
	return nil
}

func (r *PostgresRepository) Ensure(ctx context.Context, capacity int64, openAt time.Time) error {
	query :=
		`INSERT INTO points_pool (id, points, open_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, capacity, openAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context) (*models.Pool, error) {
	query := `SELECT points, open_at FROM points_pool WHERE id = 1`

	p := &models.Pool{}
	if err := r.db.QueryRowContext(ctx, query).Scan(&p.Points, &p.OpenAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("db error: points_pool row missing")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
