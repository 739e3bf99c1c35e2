// Package httpapi is the HTTP/JSON transport of pointpool. Sessions travel
// in the user_token cookie; every request's identity is resolved once at
// entry and handed to handlers as an auth.Identity value.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/logging"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type UserService interface {
	Signup(ctx context.Context, name, password string) (*models.User, auth.SessionToken, error)
	Login(ctx context.Context, name, password string) (*models.User, auth.SessionToken, error)
	Logout(ctx context.Context, id auth.Identity) error
}

type SessionResolver interface {
	Resolve(ctx context.Context, token auth.SessionToken) (*models.User, bool, error)
	TTL() time.Duration
}

type PointsService interface {
	Collect(ctx context.Context, userID int64) (int64, error)
	Assign(ctx context.Context, userID, championID int64) (int64, error)
	Balance(ctx context.Context, userID int64) (*models.Balance, error)
	PoolStatus(ctx context.Context) (*models.Pool, error)
}

type CatalogService interface {
	Champions(ctx context.Context) ([]models.Champion, error)
	Teams(ctx context.Context) ([]models.Team, error)
}

type Deps struct {
	Users    UserService
	Sessions SessionResolver
	Points   PointsService
	Catalog  CatalogService
}

type Server struct {
	address         string
	deps            Deps
	logger          logging.Logger
	shutdownTimeout time.Duration
	nowFunc         func() time.Time
}

func NewServer(address string, deps Deps, shutdownTimeout time.Duration, l logging.Logger) *Server {
	return &Server{
		address:         address,
		deps:            deps,
		logger:          l.With("module", "http_server"),
		shutdownTimeout: shutdownTimeout,
		nowFunc:         time.Now,
	}
}

// Handler returns the routed handler wrapped in the request id, logging and
// recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /users/signup", s.handleSignup)
	mux.HandleFunc("POST /users/login", s.handleLogin)
	mux.HandleFunc("POST /users/logout", s.withIdentity(s.handleLogout))
	mux.HandleFunc("GET /users/me", s.authed(s.handleMe))

	mux.HandleFunc("POST /points/collect", s.authed(s.handleCollect))
	mux.HandleFunc("POST /points/assign/{id}", s.authed(s.handleAssign))
	mux.HandleFunc("GET /points", s.authed(s.handleBalance))
	mux.HandleFunc("GET /points/pool", s.handlePool)

	mux.HandleFunc("GET /champions", s.handleChampions)
	mux.HandleFunc("GET /teams", s.handleTeams)

	return s.requestID(s.logRequests(s.recoverPanics(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
