// Package sessions persists the token -> user mapping behind session
// resolution.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	// FindUser returns the user owning token and the session's expiry if
	// the session is still valid at now, or common.ErrNotFound.
	FindUser(ctx context.Context, token []byte, now time.Time) (*models.User, time.Time, error)
	// Delete removes the session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token []byte) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
