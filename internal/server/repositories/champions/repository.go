package champions

import (
	"context"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Champion, error)
	// Credit adds delta to the champion's points and returns the new total,
	// or common.ErrNotFound for an unknown champion.
	Credit(ctx context.Context, championID int64, delta int64) (int64, error)
}
