// Package services contains server-side business logic. This file
// implements UserService: signup, login and logout on top of the password
// hasher and SessionService.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/dbx"
	"github.com/dmitrijs2005/pointpool/internal/logging"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/repomanager"
)

// PasswordHasher is the credential store contract; cryptox.Hasher
// implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// UserService provides account operations:
// - Signup: validate, create the user and open a session atomically
// - Login: verify credentials and open a new session
// - Logout: revoke the presented session
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
	hasher      PasswordHasher
	logger      logging.Logger

	// dummyHash is verified against when the user does not exist, so an
	// unknown name costs the same as a wrong password.
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions *SessionService,
	hasher PasswordHasher, logger logging.Logger) (*UserService, error) {
	dummy, err := hasher.Hash("pointpool-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		hasher:      hasher,
		logger:      logger.With("module", "users"),
		dummyHash:   dummy,
	}, nil
}

// Signup creates a user and its first session in one transaction.
func (s *UserService) Signup(ctx context.Context, name, password string) (*models.User, auth.SessionToken, error) {
	if err := ValidateName(name); err != nil {
		return nil, auth.SessionToken{}, err
	}
	if password == "" {
		return nil, auth.SessionToken{}, common.ErrMissingDetails
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, auth.SessionToken{}, fmt.Errorf("hash password: %w", err)
	}

	var (
		user  *models.User
		token auth.SessionToken
	)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).Create(ctx, &models.User{Name: name, PasswordHash: hash})
		if err != nil {
			return err
		}
		token, err = s.sessions.Issue(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrNameExists) {
			s.logger.Info(ctx, "signup rejected", "name", name, "reason", "name exists")
			return nil, auth.SessionToken{}, err
		}
		return nil, auth.SessionToken{}, fmt.Errorf("signup: %w", err)
	}

	user.PasswordHash = ""
	s.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return user, token, nil
}

// Login verifies name and password and opens a new session. Unknown users
// and wrong passwords are distinct errors that share one public message.
func (s *UserService) Login(ctx context.Context, name, password string) (*models.User, auth.SessionToken, error) {
	if name == "" || password == "" {
		return nil, auth.SessionToken{}, common.ErrMissingDetails
	}

	user, err := s.repomanager.Users(s.db).GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.logger.Info(ctx, "login rejected", "name", name, "reason", "user does not exist")
			return nil, auth.SessionToken{}, common.ErrUserDoesNotExist
		}
		return nil, auth.SessionToken{}, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info(ctx, "login rejected", "user_id", user.ID, "reason", "wrong password")
		return nil, auth.SessionToken{}, common.ErrWrongPassword
	}

	token, err := s.sessions.Issue(ctx, s.db, user.ID)
	if err != nil {
		return nil, auth.SessionToken{}, fmt.Errorf("login: %w", err)
	}

	user.PasswordHash = ""
	return user, token, nil
}

// Logout revokes the session id was resolved from. Anonymous callers and
// already revoked tokens succeed.
func (s *UserService) Logout(ctx context.Context, id auth.Identity) error {
	token, ok := id.Token()
	if !ok {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}
