// Package server initializes and runs the pointpool server: it opens the
// database, applies migrations, wires the services and runs the HTTP and
// gRPC transports together with the session purger until a shutdown
// signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/cryptox"
	"github.com/dmitrijs2005/pointpool/internal/logging"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/config"
	"github.com/dmitrijs2005/pointpool/internal/server/httpapi"
	"github.com/dmitrijs2005/pointpool/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pointpool/internal/server/services"
	"github.com/dmitrijs2005/pointpool/internal/server/sessioncache"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/pointpool/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	rdb            *redis.Client
	userService    *services.UserService
	sessionService *services.SessionService
	pointsService  *services.PointsService
	catalogService *services.CatalogService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var (
		cache sessioncache.Cache = sessioncache.Noop{}
		rdb   *redis.Client
	)
	if c.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn(ctx, "session cache unreachable, resolving from database until it recovers", "addr", c.RedisAddr, "error", err)
		}
		cancel()
		cache = sessioncache.NewRedis(rdb, c.SessionCacheTTL)
	}

	gen, err := auth.NewRandomGenerator()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("token generator: %w", err)
	}

	ss := services.NewSessionService(db, rm, gen, cache, c, logger)
	us, err := services.NewUserService(db, rm, ss, cryptox.NewHasher(cryptox.DefaultParams), logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	ps := services.NewPointsService(db, rm, c, logger)
	if err := ps.EnsurePool(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		rdb:            rdb,
		userService:    us,
		sessionService: ss,
		pointsService:  ps,
		catalogService: services.NewCatalogService(db, rm),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.userService, app.sessionService, app.pointsService, app.catalogService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, httpapi.Deps{
		Users:    app.userService,
		Sessions: app.sessionService,
		Points:   app.pointsService,
		Catalog:  app.catalogService,
	}, app.config.ShutdownTimeout, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sessionService.RunPurger(ctx, app.config.SessionPurgeInterval)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			app.logger.Warn(context.Background(), "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close failed", "error", err)
	}
}
