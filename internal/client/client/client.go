package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/rpcapi"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn

	mu           sync.Mutex
	sessionToken string
}

func withSessionCookie(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.CookieMetadataKey, (&http.Cookie{Name: common.SessionCookieName, Value: token}).String())

	return metadata.NewOutgoingContext(ctx, md)
}

// sessionInterceptor attaches the stored session cookie, retries once on
// codes.Aborted and stores any cookie the server sets.
func (s *GRPCClient) sessionInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := s.token(); token != "" {
		ctx = withSessionCookie(ctx, token)
	}

	var header metadata.MD
	opts = append(opts, grpc.Header(&header))

	err := invoker(ctx, method, req, reply, cc, opts...)
	if status.Code(err) == codes.Aborted {
		header = nil
		err = invoker(ctx, method, req, reply, cc, opts...)
	}

	s.storeCookies(header.Get(common.SetCookieMetadataKey))

	// A session the server no longer knows is dropped.
	if status.Code(err) == codes.Unauthenticated && method != rpcapi.MethodLogin && method != rpcapi.MethodSignup {
		s.SetSessionToken("")
	}
	return err
}

func (s *GRPCClient) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionToken
}

func (s *GRPCClient) storeCookies(lines []string) {
	for _, line := range lines {
		c, err := http.ParseSetCookie(line)
		if err != nil || c.Name != common.SessionCookieName {
			continue
		}
		s.mu.Lock()
		if c.MaxAge < 0 || c.Value == "" {
			s.sessionToken = ""
		} else {
			s.sessionToken = c.Value
		}
		s.mu.Unlock()
	}
}

// NewGRPCClient connects to endpointURL. Extra dial options are appended to
// the defaults (insecure transport, session interceptor).
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.sessionInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// SessionToken returns the held session cookie value, empty when anonymous.
func (s *GRPCClient) SessionToken() string {
	return s.token()
}

// SetSessionToken replaces the held session, e.g. one restored from disk.
func (s *GRPCClient) SetSessionToken(token string) {
	s.mu.Lock()
	s.sessionToken = token
	s.mu.Unlock()
}

// LoggedIn reports whether a session cookie is held.
func (s *GRPCClient) LoggedIn() bool {
	return s.token() != ""
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, reply any) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return mapError(s.conn.Invoke(ctx, method, req, reply))
}

func (s *GRPCClient) Signup(ctx context.Context, name, password string) (models.User, error) {
	out := &structpb.Struct{}
	if err := s.invoke(ctx, rpcapi.MethodSignup, rpcapi.Credentials(name, password), out); err != nil {
		return models.User{}, err
	}
	return rpcapi.ToUser(out), nil
}

func (s *GRPCClient) Login(ctx context.Context, name, password string) (models.User, error) {
	out := &structpb.Struct{}
	if err := s.invoke(ctx, rpcapi.MethodLogin, rpcapi.Credentials(name, password), out); err != nil {
		return models.User{}, err
	}
	return rpcapi.ToUser(out), nil
}

// Logout revokes the session on the server and forgets it locally, even if
// the call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	err := s.invoke(ctx, rpcapi.MethodLogout, &emptypb.Empty{}, &emptypb.Empty{})
	s.SetSessionToken("")
	return err
}

func (s *GRPCClient) Me(ctx context.Context) (models.User, error) {
	out := &structpb.Struct{}
	if err := s.invoke(ctx, rpcapi.MethodMe, &emptypb.Empty{}, out); err != nil {
		return models.User{}, err
	}
	return rpcapi.ToUser(out), nil
}

func (s *GRPCClient) Collect(ctx context.Context) (int64, error) {
	out := &wrapperspb.Int64Value{}
	if err := s.invoke(ctx, rpcapi.MethodCollect, &emptypb.Empty{}, out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (s *GRPCClient) Assign(ctx context.Context, championID int64) (int64, error) {
	out := &wrapperspb.Int64Value{}
	if err := s.invoke(ctx, rpcapi.MethodAssign, wrapperspb.Int64(championID), out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (s *GRPCClient) Balance(ctx context.Context) (models.Balance, error) {
	out := &structpb.Struct{}
	if err := s.invoke(ctx, rpcapi.MethodBalance, &emptypb.Empty{}, out); err != nil {
		return models.Balance{}, err
	}
	return rpcapi.ToBalance(out)
}

func (s *GRPCClient) PoolStatus(ctx context.Context) (models.Pool, bool, error) {
	out := &structpb.Struct{}
	if err := s.invoke(ctx, rpcapi.MethodPoolStatus, &emptypb.Empty{}, out); err != nil {
		return models.Pool{}, false, err
	}
	return rpcapi.ToPool(out)
}

func (s *GRPCClient) Champions(ctx context.Context) ([]models.Champion, error) {
	out := &structpb.ListValue{}
	if err := s.invoke(ctx, rpcapi.MethodListChampions, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return rpcapi.ToChampions(out), nil
}

func (s *GRPCClient) Teams(ctx context.Context) ([]models.Team, error) {
	out := &structpb.ListValue{}
	if err := s.invoke(ctx, rpcapi.MethodListTeams, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return rpcapi.ToTeams(out), nil
}
