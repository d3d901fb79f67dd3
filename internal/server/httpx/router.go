// Package httpx exposes the shopkeeper JSON API over HTTP.
package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"github.com/rs/cors"
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

type CatalogService interface {
	AddProduct(ctx context.Context, in services.NewProduct) (*models.Product, error)
	RemoveProduct(ctx context.Context, id int) error
	AllProducts(ctx context.Context) ([]models.Product, error)
	NewCollections(ctx context.Context) ([]models.Product, error)
	PopularInWomen(ctx context.Context) ([]models.Product, error)
}

type ImageService interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
	PresignedURL(ctx context.Context, key string) (string, error)
}

// Deps collects what the router needs. Limiter defaults to an in-memory
// limiter and Metrics to a private registry.
type Deps struct {
	Logger   logging.Logger
	Identity IdentityService
	Cart     CartService
	Catalog  CatalogService
	Images   ImageService
	Limiter  RateLimiter
	Metrics  *metrics.Metrics

	CollapseLoginErrors bool
	AuthRateLimit       int
	AuthRateWindow      time.Duration
}

// Router wires HTTP endpoints to services.
type Router struct {
	mux     *http.ServeMux
	handler http.Handler
	logger  logging.Logger

	identity IdentityService
	cart     CartService
	catalog  CatalogService
	images   ImageService
	limiter  RateLimiter
	metrics  *metrics.Metrics

	collapseLoginErrors bool
	authRateLimit       int
	authRateWindow      time.Duration
}

const (
	maxJSONBody   = 1 << 20
	maxImageBytes = 10 << 20
)

func NewRouter(d Deps) *Router {
	r := &Router{
		mux:                 http.NewServeMux(),
		logger:              d.Logger,
		identity:            d.Identity,
		cart:                d.Cart,
		catalog:             d.Catalog,
		images:              d.Images,
		limiter:             d.Limiter,
		metrics:             d.Metrics,
		collapseLoginErrors: d.CollapseLoginErrors,
		authRateLimit:       d.AuthRateLimit,
		authRateWindow:      d.AuthRateWindow,
	}
	if r.logger == nil {
		r.logger = logging.Nop()
	}
	r.logger = r.logger.With("module", "httpx")
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	if r.metrics == nil {
		r.metrics = metrics.NewWithRuntime()
	}

	r.register()
	r.handler = cors.AllowAll().Handler(r.mux)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Close releases the rate limiter.
func (r *Router) Close() error {
	return r.limiter.Close()
}

func (r *Router) register() {
	r.handle("GET /{$}", r.handleRoot)

	r.handle("POST /signup", r.withRateLimit("POST /signup", r.handleSignup))
	r.handle("POST /login", r.withRateLimit("POST /login", r.handleLogin))

	r.handle("POST /addtocart", r.requireAuth(r.handleAddToCart))
	r.handle("POST /removefromcart", r.requireAuth(r.handleRemoveFromCart))
	r.handle("POST /getcartitems", r.requireAuth(r.handleGetCartItems))

	r.handle("POST /addproduct", r.handleAddProduct)
	r.handle("POST /removeproduct", r.handleRemoveProduct)
	r.handle("GET /allproducts", r.handleAllProducts)
	r.handle("GET /newcollections", r.handleNewCollections)
	r.handle("GET /popularinwomen", r.handlePopularInWomen)

	r.handle("POST /upload", r.handleUpload)
	r.handle("GET /images/{key}", r.handleImage)

	r.mux.Handle("GET /metrics", r.metrics.Handler())
}

// handle registers h under pattern wrapped in tracing, metrics and panic
// recovery. The pattern doubles as the low-cardinality route label.
func (r *Router) handle(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, r.instrument(pattern, h))
}

func (r *Router) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "Shopkeeper API is running")
}
