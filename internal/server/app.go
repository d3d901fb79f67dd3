// Package server initializes and runs the shopkeeper server.
// It opens the configured storage backend, applies migrations, wires the
// services and serves them over HTTP and gRPC until a shutdown signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"github.com/dmitrijs2005/shopkeeper/internal/server/httpx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/shopkeeper/internal/server/grpc"
)

// Seams for tests.
var (
	openRepositories = repomanager.Open
	newRedisLimiter  = httpx.NewRedisRateLimiter
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	repos          repomanager.RepositoryManager
	metrics        *metrics.Metrics
	identity       *services.IdentityService
	cartService    *services.CartService
	catalogService *services.CatalogService
	imageService   *services.ImageService
}

// NewApp connects storage and runs migrations. The returned App owns the
// repositories; Run closes them on exit.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	rm, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &App{
		config:         c,
		logger:         logger,
		repos:          rm,
		metrics:        metrics.NewWithRuntime(),
		identity:       services.NewIdentityService(rm.Users(), c),
		cartService:    services.NewCartService(rm.Users()),
		catalogService: services.NewCatalogService(rm.Products()),
		imageService:   services.NewImageService(c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// rateLimiter uses Redis when configured and falls back to memory when it is
// unreachable.
func (app *App) rateLimiter(ctx context.Context) httpx.RateLimiter {
	if app.config.RedisAddr == "" {
		return httpx.NewMemoryRateLimiter()
	}
	rl, err := newRedisLimiter(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB, app.logger)
	if err != nil {
		app.logger.Warn(ctx, "redis unavailable, using in-memory rate limiter", "error", err)
		return httpx.NewMemoryRateLimiter()
	}
	return rl
}

func (app *App) newRouter(ctx context.Context) *httpx.Router {
	return httpx.NewRouter(httpx.Deps{
		Logger:              app.logger,
		Identity:            app.identity,
		Cart:                app.cartService,
		Catalog:             app.catalogService,
		Images:              app.imageService,
		Limiter:             app.rateLimiter(ctx),
		Metrics:             app.metrics,
		CollapseLoginErrors: app.config.CollapseLoginErrors,
		AuthRateLimit:       app.config.AuthRateLimit,
		AuthRateWindow:      app.config.AuthRateWindow,
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, router *httpx.Router) {
	s := httpx.NewHTTPServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.identity, app.cartService, app.metrics, app.config.CollapseLoginErrors)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then releases the rate limiter and the repositories.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend)

	app.initSignalHandler(cancelFunc)

	router := app.newRouter(ctx)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, router)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "Stopping app...")
	return errors.Join(router.Close(), app.repos.Close(context.Background()))
}
