package grpc

import (
	"context"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/rpcapi"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// currentUser returns the user resolved by authInterceptor or an
// Unauthenticated status.
func (s *GRPCServer) currentUser(ctx context.Context) (models.User, error) {
	u, ok := auth.IdentityFrom(ctx).CurrentUser()
	if !ok {
		return models.User{}, s.toStatus(ctx, common.ErrUnauthenticated)
	}
	return u, nil
}

func (s *GRPCServer) setCookieHeader(ctx context.Context, value string) {
	if err := grpc.SetHeader(ctx, metadata.Pairs(common.SetCookieMetadataKey, value)); err != nil {
		s.logger.Warn(ctx, "set-cookie header not sent", "error", err)
	}
}

func (s *GRPCServer) Signup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, password := rpcapi.CredentialsFrom(req)

	user, token, err := s.users.Signup(ctx, name, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.setCookieHeader(ctx, auth.NewSessionCookie(token, s.sessions.TTL()).String())
	return rpcapi.FromUser(user), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, password := rpcapi.CredentialsFrom(req)

	user, token, err := s.users.Login(ctx, name, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.setCookieHeader(ctx, auth.NewSessionCookie(token, s.sessions.TTL()).String())
	return rpcapi.FromUser(user), nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.users.Logout(ctx, auth.IdentityFrom(ctx)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.setCookieHeader(ctx, auth.ClearSessionCookie().String())
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return rpcapi.FromUser(&u), nil
}

func (s *GRPCServer) Collect(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	points, err := s.points.Collect(ctx, u.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.Int64(points), nil
}

func (s *GRPCServer) Assign(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	points, err := s.points.Assign(ctx, u.ID, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.Int64(points), nil
}

func (s *GRPCServer) Balance(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.points.Balance(ctx, u.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return rpcapi.FromBalance(b), nil
}

func (s *GRPCServer) PoolStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, err := s.points.PoolStatus(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return rpcapi.FromPool(p, p.IsOpen(s.nowFunc())), nil
}

func (s *GRPCServer) ListChampions(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := s.catalog.Champions(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return rpcapi.FromChampions(list), nil
}

func (s *GRPCServer) ListTeams(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := s.catalog.Teams(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return rpcapi.FromTeams(list), nil
}
