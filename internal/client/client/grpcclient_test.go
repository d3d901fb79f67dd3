package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/shoprpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// fakeShop answers shop methods through grpc.UnknownServiceHandler so the
// client can be tested without the real server.
type fakeShop struct {
	mu     sync.Mutex
	tokens []string
	cart   map[string]float64
	err    error
}

func (f *fakeShop) handle(_ any, stream grpc.ServerStream) error {
	method, _ := grpc.MethodFromServerStream(stream)

	f.mu.Lock()
	defer f.mu.Unlock()

	if md, ok := metadata.FromIncomingContext(stream.Context()); ok {
		if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
			f.tokens = append(f.tokens, v[0])
		}
	}

	var in, out proto.Message
	switch method {
	case shoprpc.MethodSignup, shoprpc.MethodLogin:
		in = &structpb.Struct{}
		out = wrapperspb.String("tok-" + method)
	case shoprpc.MethodAddToCart, shoprpc.MethodRemoveFromCart:
		in, out = &wrapperspb.Int64Value{}, &emptypb.Empty{}
	case shoprpc.MethodGetCartItems:
		s := &structpb.Struct{Fields: map[string]*structpb.Value{}}
		for k, v := range f.cart {
			s.Fields[k] = structpb.NewNumberValue(v)
		}
		in, out = &emptypb.Empty{}, s
	case shoprpc.MethodPing:
		in, out = &emptypb.Empty{}, wrapperspb.String("OK")
	default:
		return status.Error(codes.Unimplemented, method)
	}

	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	return stream.SendMsg(out)
}

func newTestClient(t *testing.T, f *fakeShop) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnknownServiceHandler(f.handle))
	go func() { _ = srv.Serve(lis) }()

	c, err := NewShopClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		srv.Stop()
	})
	return c
}

func TestLoginStoresTokenAndAttachesIt(t *testing.T) {
	f := &fakeShop{}
	c := newTestClient(t, f)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	assert.Empty(t, f.tokens)

	require.NoError(t, c.Login(ctx, "a@x", "pw"))
	assert.Equal(t, "tok-"+shoprpc.MethodLogin, c.Token())

	require.NoError(t, c.AddToCart(ctx, 3))
	require.NoError(t, c.RemoveFromCart(ctx, 3))
	assert.Equal(t, []string{"tok-" + shoprpc.MethodLogin, "tok-" + shoprpc.MethodLogin}, f.tokens)

	c.Logout()
	assert.Empty(t, c.Token())
}

func TestSignupStoresToken(t *testing.T) {
	c := newTestClient(t, &fakeShop{})
	require.NoError(t, c.Signup(context.Background(), "u", "a@x", "pw"))
	assert.Equal(t, "tok-"+shoprpc.MethodSignup, c.Token())
}

func TestGetCartItems_SkipsEmptySlotsAndSorts(t *testing.T) {
	c := newTestClient(t, &fakeShop{cart: map[string]float64{"0": 0, "12": 1, "3": 2, "7": 0}})

	items, err := c.GetCartItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CartItem{{Slot: 3, Quantity: 2}, {Slot: 12, Quantity: 1}}, items)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unavailable, ErrUnavailable},
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.AlreadyExists, ErrAlreadyExists},
		{codes.NotFound, ErrNotFound},
		{codes.InvalidArgument, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			c := newTestClient(t, &fakeShop{err: status.Error(tt.code, "server says no")})
			err := c.Login(context.Background(), "a@x", "pw")
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "server says no")
			assert.Empty(t, c.Token())
		})
	}

	c := &GRPCClient{}
	plain := errors.New("plain")
	assert.Equal(t, plain, c.mapError(plain))
	assert.Equal(t, codes.Internal, status.Code(c.mapError(status.Error(codes.Internal, "x"))))
	assert.NoError(t, c.mapError(nil))
}
