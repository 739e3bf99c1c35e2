package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/dbx"
	"github.com/dmitrijs2005/pointpool/internal/logging"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/config"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pointpool/internal/server/sessioncache"
)

// SessionService issues, resolves and revokes session tokens.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   *auth.Generator
	cache       sessioncache.Cache
	ttl         time.Duration
	cacheTTL    time.Duration
	logger      logging.Logger
	nowFunc     func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, gen *auth.Generator,
	cache sessioncache.Cache, cfg *config.Config, logger logging.Logger) *SessionService {
	if cache == nil {
		cache = sessioncache.Noop{}
	}
	return &SessionService{
		db:          db,
		repomanager: m,
		generator:   gen,
		cache:       cache,
		ttl:         cfg.SessionTTL,
		cacheTTL:    cfg.SessionCacheTTL,
		logger:      logger.With("module", "sessions"),
		nowFunc:     time.Now,
	}
}

// TTL is the absolute session lifetime, used as the cookie Max-Age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a session for userID through tx, which may be the
// transaction that created the user.
func (s *SessionService) Issue(ctx context.Context, tx dbx.DBTX, userID int64) (auth.SessionToken, error) {
	token := s.generator.New()
	now := s.nowFunc()

	err := s.repomanager.Sessions(tx).Create(ctx, &models.Session{
		Token:     token.Bytes(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return auth.SessionToken{}, fmt.Errorf("issue session: %w", err)
	}
	return token, nil
}

// Resolve maps token to its user. An unknown or expired token is
// (nil, false, nil), not an error. The returned user carries identity
// fields only.
func (s *SessionService) Resolve(ctx context.Context, token auth.SessionToken) (*models.User, bool, error) {
	if u, ok, err := s.cache.Get(ctx, token); err != nil {
		s.logger.Warn(ctx, "session cache read failed", "error", err)
	} else if ok {
		return u, true, nil
	}

	now := s.nowFunc()
	u, expiresAt, err := s.repomanager.Sessions(s.db).FindUser(ctx, token.Bytes(), now)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("resolve session: %w", err)
	}

	user := &models.User{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}

	ttl := min(s.cacheTTL, expiresAt.Sub(now))
	if err := s.cache.Set(ctx, token, user, ttl); err != nil {
		s.logger.Warn(ctx, "session cache write failed", "error", err)
	}
	return user, true, nil
}

// Revoke deletes the session. Revoking an unknown token succeeds. Once the
// row is gone the revocation stands; a cache failure only delays it by at
// most the cache TTL.
func (s *SessionService) Revoke(ctx context.Context, token auth.SessionToken) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, token.Bytes()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if err := s.cache.Delete(ctx, token); err != nil {
		s.logger.Warn(ctx, "session cache evict failed", "error", err)
	}
	return nil
}

// PurgeExpired deletes sessions whose lifetime has ended.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.nowFunc())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// RunPurger calls PurgeExpired every interval until ctx is done.
func (s *SessionService) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				s.logger.Error(ctx, "session purge failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "expired sessions purged", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
