// Package ledger stores per-user point balances and collect cooldowns.
package ledger

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type Repository interface {
	// GetCooldown returns the user's earliest next collect time and locks
	// the user's row until the surrounding transaction ends.
	GetCooldown(ctx context.Context, userID int64) (time.Time, error)
	// Credit adds delta and moves the cooldown to nextCollect.
	Credit(ctx context.Context, userID int64, delta int64, nextCollect time.Time) (int64, error)
	// Debit subtracts delta, failing with common.ErrInsufficientFunds
	// instead of going negative.
	Debit(ctx context.Context, userID int64, delta int64) (int64, error)
	Balance(ctx context.Context, userID int64) (*models.Balance, error)
}
