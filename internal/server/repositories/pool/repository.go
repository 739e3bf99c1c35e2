// Package pool stores the single shared points pool row.
package pool

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type Repository interface {
	// Take removes one point if the pool is open at now and returns what
	// is left. A closed or empty pool yields common.ErrPoolClosed.
	Take(ctx context.Context, now time.Time) (int64, error)
	// Refill resets the pool to capacity, consumable from openAt.
	Refill(ctx context.Context, capacity int64, openAt time.Time) error
	Get(ctx context.Context) (*models.Pool, error)
	// Ensure creates the pool row if it does not exist yet. An existing
	// row is left as it is.
	Ensure(ctx context.Context, capacity int64, openAt time.Time) error
}
