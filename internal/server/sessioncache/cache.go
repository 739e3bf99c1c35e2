// Package sessioncache keeps recently resolved sessions close to the
// server so repeated requests skip the sessions/users join.
//
// Entries hold identity fields only (id, name, created_at). Their TTL is
// capped by the caller at the session's own remaining lifetime, and
// revocation deletes the entry before returning. A revoked token also
// leaves a tombstone behind so a resolve that read the session just before
// the revocation cannot put it back.
package sessioncache

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type Cache interface {
	// Get returns the cached user for token. A miss is (nil, false, nil).
	Get(ctx context.Context, token auth.SessionToken) (*models.User, bool, error)
	// Set stores user for token unless the token was deleted recently.
	Set(ctx context.Context, token auth.SessionToken, user *models.User, ttl time.Duration) error
	// Delete evicts token and keeps later Sets for it from taking effect.
	Delete(ctx context.Context, token auth.SessionToken) error
}

// Noop is used when no cache is configured.
type Noop struct{}

func (Noop) Get(context.Context, auth.SessionToken) (*models.User, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, auth.SessionToken, *models.User, time.Duration) error {
	return nil
}

func (Noop) Delete(context.Context, auth.SessionToken) error {
	return nil
}
