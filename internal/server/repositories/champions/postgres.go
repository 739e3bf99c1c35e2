package champions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) List(ctx context.Context) ([]models.Champion, error) {
	query :=
		`SELECT id, team_id, name, points FROM champions
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Champion, 0)
	for rows.Next() {
		var c models.Champion
		if err := rows.Scan(&c.ID, &c.TeamID, &c.Name, &c.Points); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Credit is a single atomic increment, so concurrent credits to the same
// champion never lose updates.
func (r *PostgresRepository) Credit(ctx context.Context, championID int64, delta int64) (int64, error) {
	query :=
		`UPDATE champions SET points = points + $2
		 WHERE id = $1
		 RETURNING points
		 `

	var points int64
	if err := r.db.QueryRowContext(ctx, query, championID, delta).Scan(&points); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return points, nil
}
