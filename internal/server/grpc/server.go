package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/logging"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"google.golang.org/grpc"
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

type GRPCServer struct {
	address  string
	users    UserService
	sessions SessionResolver
	points   PointsService
	catalog  CatalogService
	logger   logging.Logger
	nowFunc  func() time.Time
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ss SessionResolver, ps PointsService, cs CatalogService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		sessions: ss,
		points:   ps,
		catalog:  cs,
		nowFunc:  time.Now,
	}
}

// NewServer builds a grpc.Server with the interceptors and the PointPool
// service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authInterceptor))
	srv.RegisterService(&serviceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
