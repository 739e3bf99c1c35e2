package sessions

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

func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) error {
	query :=
		`INSERT INTO sessions (session_token, user_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 `

	if _, err := r.db.ExecContext(ctx, query, s.Token, s.UserID, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindUser(ctx context.Context, token []byte, now time.Time) (*models.User, time.Time, error) {
	query :=
		`SELECT u.id, u.name, u.points, u.can_get_points_time, u.created_at, s.expires_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.session_token = $1 AND s.expires_at > $2
		 `

	u := &models.User{}
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx, query, token, now).
		Scan(&u.ID, &u.Name, &u.Points, &u.CanGetPointsTime, &u.CreatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, common.ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("db error: %w", err)
	}
	return u, expiresAt, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token []byte) error {
	query := `DELETE FROM sessions WHERE session_token = $1`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
