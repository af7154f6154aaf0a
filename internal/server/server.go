package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/desertthunder/spotctl/internal/control"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the [http.ServeMux] patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the patterns this handler serves, e.g. "GET /callback"
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Authorizer completes the OAuth callback. Implemented by [sessions.Manager].
type Authorizer interface {
	CompleteAuthorization(ctx context.Context, code, userID string) (*models.TokenRecord, error)
}

// Notifier tells a chat user how the callback ended. Implemented by [bot.Bot].
type Notifier interface {
	AuthorizationSucceeded(ctx context.Context, userID string)
	AuthorizationCancelled(ctx context.Context, userID string)
}

// UpdateHandler consumes webhook updates. Implemented by [bot.Bot].
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *tgmodels.Update)
}

// Dispatcher runs control actions. Implemented by [control.Router].
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.ControlRequest) (*control.Result, error)
}

// Options wires the relay's collaborators into [New].
type Options struct {
	Authorizer  Authorizer
	Notifier    Notifier
	Updates     UpdateHandler
	Dispatcher  Dispatcher
	WebhookPath string
	Logger      *log.Logger

	// RateLimit is requests per second per client on /api/. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// New builds the relay's router with its middleware stack and every route registered.
func New(opts Options) *BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var secret string
	if len(opts.WebhookPath) > 1 {
		secret = opts.WebhookPath
	}

	r := NewBasicRouter()
	r.Use(
		RequestID(),
		Recover(logger),
		Logging(logger, secret),
		Metrics(secret),
	)
	if opts.RateLimit > 0 {
		r.Use(RateLimit(rate.Limit(opts.RateLimit), opts.RateBurst, "/api/"))
	}

	r.Handler(NewCallbackHandler(opts.Authorizer, opts.Notifier, logger))
	r.Handler(NewControlHandler(opts.Dispatcher, logger))
	if secret != "" && opts.Updates != nil {
		r.Handler(NewWebhookHandler(secret, opts.Updates, logger))
	}

	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(health))
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// NewHTTPServer returns an [http.Server] for handler with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
