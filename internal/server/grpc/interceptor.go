package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/rpcapi"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// sessionMethods resolve the caller's session before the handler runs.
var sessionMethods = map[string]bool{
	rpcapi.MethodLogout:  true,
	rpcapi.MethodMe:      true,
	rpcapi.MethodCollect: true,
	rpcapi.MethodAssign:  true,
	rpcapi.MethodBalance: true,
}

// authInterceptor resolves the session cookie from "cookie" metadata once
// and stores the resulting auth.Identity in ctx. It never rejects a call;
// handlers that need a user check the identity themselves.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if !sessionMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	id := auth.Anonymous()

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if token, ok := auth.TokenFromCookies(md.Get(common.CookieMetadataKey)); ok {
			user, found, err := s.sessions.Resolve(ctx, token)
			if err != nil {
				return nil, s.toStatus(ctx, err)
			}
			if found {
				id = auth.NewIdentity(*user, token)
			} else {
				id = id.WithToken(token)
			}
		}
	}

	return handler(auth.WithIdentity(ctx, id), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
