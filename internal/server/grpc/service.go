package grpc

import (
	"context"

	"github.com/dmitrijs2005/pointpool/internal/rpcapi"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// pointPoolServer is the service implemented by GRPCServer. Requests and
// responses are protobuf well-known types; rpcapi converts them.
type pointPoolServer interface {
	Signup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Me(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Collect(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	Assign(context.Context, *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	Balance(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	PoolStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListChampions(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	ListTeams(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// unary builds a method descriptor the way protoc-gen-go-grpc would.
func unary[Req, Resp proto.Message](name string, newReq func() Req,
	call func(pointPoolServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + rpcapi.ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(pointPoolServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(pointPoolServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func newEmpty() *emptypb.Empty         { return &emptypb.Empty{} }
func newStruct() *structpb.Struct      { return &structpb.Struct{} }
func newInt64() *wrapperspb.Int64Value { return &wrapperspb.Int64Value{} }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: rpcapi.ServiceName,
	HandlerType: (*pointPoolServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Signup", newStruct, pointPoolServer.Signup),
		unary("Login", newStruct, pointPoolServer.Login),
		unary("Logout", newEmpty, pointPoolServer.Logout),
		unary("Me", newEmpty, pointPoolServer.Me),
		unary("Collect", newEmpty, pointPoolServer.Collect),
		unary("Assign", newInt64, pointPoolServer.Assign),
		unary("Balance", newEmpty, pointPoolServer.Balance),
		unary("PoolStatus", newEmpty, pointPoolServer.PoolStatus),
		unary("ListChampions", newEmpty, pointPoolServer.ListChampions),
		unary("ListTeams", newEmpty, pointPoolServer.ListTeams),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pointpool/v1/pointpool.proto",
}
