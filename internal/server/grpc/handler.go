package grpc

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"github.com/dmitrijs2005/shopkeeper/internal/shoprpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func (s *GRPCServer) Signup(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {

	s.logger.Info(ctx, "Registration request")

	token, err := s.identity.Register(ctx,
		stringField(req, shoprpc.FieldUsername),
		stringField(req, shoprpc.FieldEmail),
		stringField(req, shoprpc.FieldPassword),
	)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return nil, status.Error(codes.AlreadyExists, "Existing user found with same email id or email Address")
		}
		return nil, s.toStatus(ctx, err)
	}

	return wrapperspb.String(token), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {

	token, err := s.identity.Authenticate(ctx, stringField(req, shoprpc.FieldEmail), stringField(req, shoprpc.FieldPassword))

	switch {
	case err == nil:
		return wrapperspb.String(token), nil
	case s.collapseLoginErrors && (errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrInvalidCredential)):
		return nil, status.Error(codes.Unauthenticated, "Wrong Email Id or Password")
	case errors.Is(err, common.ErrorNotFound):
		return nil, status.Error(codes.NotFound, "Wrong Email Id")
	case errors.Is(err, common.ErrInvalidCredential):
		return nil, status.Error(codes.Unauthenticated, "Wrong Password")
	default:
		return nil, s.toStatus(ctx, err)
	}
}

func (s *GRPCServer) AddToCart(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	return s.mutateCart(ctx, "increment", s.cart.Increment, req)
}

func (s *GRPCServer) RemoveFromCart(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	return s.mutateCart(ctx, "decrement", s.cart.Decrement, req)
}

func (s *GRPCServer) mutateCart(ctx context.Context, op string, fn func(context.Context, services.Principal, int) error, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Please authenticate using a valid token")
	}

	slot := req.GetValue()
	if slot > math.MaxInt32 || slot < math.MinInt32 {
		return nil, status.Error(codes.InvalidArgument, "item id out of range")
	}

	err := fn(ctx, p, int(slot))
	s.metrics.CartOperation(op, err)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetCartItems(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Please authenticate using a valid token")
	}

	cart, err := s.cart.Read(ctx, p)
	s.metrics.CartOperation("read", err)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(cart))}
	for slot, qty := range cart {
		out.Fields[strconv.Itoa(slot)] = structpb.NewNumberValue(float64(qty))
	}
	return out, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {

	return wrapperspb.String("OK"), nil

}

// toStatus maps service errors to gRPC status codes. Unexpected errors are
// logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrMissingToken),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrDuplicateIdentity):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrIdentityNotFound):
		return status.Error(codes.NotFound, "User not found")
	case errors.Is(err, common.ErrInvalidSlot), errors.Is(err, common.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
