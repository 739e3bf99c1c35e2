package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/dbx"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

// nameConstraint is the unique constraint on users.name.
const nameConstraint = "users_name_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a user and fills in its id and timestamps. A taken name
// yields common.ErrNameExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, points, can_get_points_time, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, user.Name, user.PasswordHash).
		Scan(&user.ID, &user.Points, &user.CanGetPointsTime, &user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, nameConstraint) {
			return nil, common.ErrNameExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	query :=
		`SELECT id, name, password_hash, points, can_get_points_time, created_at
		 FROM users
		 WHERE name = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, name, password_hash, points, can_get_points_time, created_at
		 FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Points, &u.CanGetPointsTime, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
