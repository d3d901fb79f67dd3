package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"github.com/dmitrijs2005/shopkeeper/internal/shoprpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type principalKey struct{}

func principalFromContext(ctx context.Context) (services.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(services.Principal)
	return p, ok && !p.IsZero()
}

var protectedMethods = map[string]bool{
	shoprpc.MethodAddToCart:      true,
	shoprpc.MethodRemoveFromCart: true,
	shoprpc.MethodGetCartItems:   true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if protectedMethods[info.FullMethod] {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "Please authenticate using valid token")
		}

		p, err := s.identity.VerifyToken(accessToken)
		if err != nil {
			if !errors.Is(err, common.ErrInvalidToken) && !errors.Is(err, common.ErrTokenExpired) {
				s.logger.Warn(ctx, "token verification failed", "error", err)
			}
			return nil, status.Error(codes.Unauthenticated, "Please authenticate using a valid token")
		}

		ctx = context.WithValue(ctx, principalKey{}, p)
	}

	return handler(ctx, req)
}

// observeInterceptor records the outcome of every call.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	s.metrics.ObserveGRPC(info.FullMethod, code.String())
	s.logger.Debug(ctx, "grpc call", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	return resp, err
}
