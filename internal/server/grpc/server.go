package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"google.golang.org/grpc"
)

type IdentityService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	VerifyToken(token string) (services.Principal, error)
}

type CartService interface {
	Increment(ctx context.Context, p services.Principal, slot int) error
	Decrement(ctx context.Context, p services.Principal, slot int) error
	Read(ctx context.Context, p services.Principal) (models.Cart, error)
}

type GRPCServer struct {
	address             string
	identity            IdentityService
	cart                CartService
	metrics             *metrics.Metrics
	logger              logging.Logger
	collapseLoginErrors bool
}

func NewGRPCServer(a string, l logging.Logger, is IdentityService, cs CartService, m *metrics.Metrics, collapseLoginErrors bool) *GRPCServer {
	if m == nil {
		m = metrics.NewWithRuntime()
	}
	return &GRPCServer{
		address:             a,
		logger:              l.With("module", "grpc_server"),
		identity:            is,
		cart:                cs,
		metrics:             m,
		collapseLoginErrors: collapseLoginErrors,
	}
}

// newServer builds a grpc.Server with the shop service and its interceptors
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.observeInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&serviceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	return srv.Serve(listen)
}
