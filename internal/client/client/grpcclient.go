package client

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/shoprpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CartItem is one non-empty cart slot.
type CartItem struct {
	Slot     int
	Quantity int
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewShopClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
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

// Token returns the current session token, empty when logged out.
func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// Logout forgets the session token.
func (s *GRPCClient) Logout() {
	s.setToken("")
}

func (s *GRPCClient) Signup(ctx context.Context, username, email, password string) error {
	return s.authenticate(ctx, shoprpc.MethodSignup, map[string]any{
		shoprpc.FieldUsername: username,
		shoprpc.FieldEmail:    email,
		shoprpc.FieldPassword: password,
	})
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, shoprpc.MethodLogin, map[string]any{
		shoprpc.FieldEmail:    email,
		shoprpc.FieldPassword: password,
	})
}

func (s *GRPCClient) authenticate(ctx context.Context, method string, fields map[string]any) error {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return err
	}

	out := &wrapperspb.StringValue{}
	if err := s.conn.Invoke(ctx, method, req, out); err != nil {
		return s.mapError(err)
	}

	s.setToken(out.GetValue())
	return nil
}

func (s *GRPCClient) AddToCart(ctx context.Context, slot int) error {
	return s.mapError(s.conn.Invoke(ctx, shoprpc.MethodAddToCart, wrapperspb.Int64(int64(slot)), &emptypb.Empty{}))
}

func (s *GRPCClient) RemoveFromCart(ctx context.Context, slot int) error {
	return s.mapError(s.conn.Invoke(ctx, shoprpc.MethodRemoveFromCart, wrapperspb.Int64(int64(slot)), &emptypb.Empty{}))
}

// GetCartItems returns the non-empty slots of the cart ordered by slot.
func (s *GRPCClient) GetCartItems(ctx context.Context) ([]CartItem, error) {
	out := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, shoprpc.MethodGetCartItems, &emptypb.Empty{}, out); err != nil {
		return nil, s.mapError(err)
	}

	items := make([]CartItem, 0)
	for k, v := range out.GetFields() {
		slot, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("unexpected cart slot %q", k)
		}
		if qty := int(v.GetNumberValue()); qty > 0 {
			items = append(items, CartItem{Slot: slot, Quantity: qty})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Slot < items[j].Slot })
	return items, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	return s.mapError(s.conn.Invoke(ctx, shoprpc.MethodPing, &emptypb.Empty{}, &wrapperspb.StringValue{}))
}

// mapError converts gRPC status codes to package sentinels, keeping the
// server message.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		sentinel = ErrUnavailable
	case codes.Unauthenticated:
		sentinel = ErrUnauthorized
	case codes.AlreadyExists:
		sentinel = ErrAlreadyExists
	case codes.NotFound:
		sentinel = ErrNotFound
	case codes.InvalidArgument:
		sentinel = ErrInvalidArgument
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}
