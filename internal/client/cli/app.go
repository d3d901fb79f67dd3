package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/config"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// ShopClient is the server surface the CLI uses.
type ShopClient interface {
	Signup(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout()
	Token() string
	AddToCart(ctx context.Context, slot int) error
	RemoveFromCart(ctx context.Context, slot int) error
	GetCartItems(ctx context.Context) ([]client.CartItem, error)
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	config *config.Config
	client ShopClient
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
	email  string

	httpClient *http.Client
}

func NewApp(c *config.Config) (*App, error) {
	level := slog.LevelWarn
	if c.Debug {
		level = slog.LevelDebug
	}
	logger := logging.NewTextSlogLogger(os.Stderr, level).With("module", "cli")

	apiClient, err := client.NewShopClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		client: apiClient,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,

		httpClient: &http.Client{},
	}, nil
}

// Run starts the REPL and closes the connection when it returns.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.client.Close(); err != nil {
			a.logger.Warn(ctx, "closing connection", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.client.Token() != ""
}

// callCtx bounds a single server call by the configured request timeout.
func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return "(" + a.email + ")"
}

// Root runs the REPL over the app's reader.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to Shopkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
