package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/telegram-ragbot/health"
	"github.com/marcelsud/telegram-ragbot/metrics"
	"github.com/marcelsud/telegram-ragbot/update"
	"github.com/marcelsud/telegram-ragbot/webhook"
	"github.com/rs/zerolog"
)

// UpdateHandler takes raw provider deliveries
type UpdateHandler interface {
	Handle(ctx context.Context, raw []byte) (update.Result, error)
}

// HealthReporter produces the readiness document
type HealthReporter interface {
	Report(ctx context.Context) health.Status
}

// DocumentLoader re-imports the document corpus
type DocumentLoader interface {
	Load(ctx context.Context) (int, error)
}

// Config holds the settings the HTTP surface needs
type Config struct {
	BotName        string
	Mode           string
	WebhookPath    string
	WebhookSecret  string
	AdminToken     string
	DefaultURL     string
	Production     bool
	RequestTimeout time.Duration
}

// operatorRoutes reports whether the operator group is mounted.
// In production it stays unmounted unless an admin token protects it.
func (c Config) operatorRoutes() bool {
	return !c.Production || c.AdminToken != ""
}

/* Dependencies are the services behind the routes
 * Metrics, Collector and Documents are optional
 */
type Dependencies struct {
	Updates   UpdateHandler
	Webhooks  webhook.Lifecycle
	Health    HealthReporter
	Collector metrics.Collector
	Metrics   http.Handler
	Documents DocumentLoader
}

// Handlers sets up the bot's HTTP routes
func Handlers(cfg Config, deps Dependencies, logger zerolog.Logger) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/", getRoot(cfg, deps).ServeHTTP)
	r.Get("/health", getHealth(deps.Health).ServeHTTP)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// Provider deliveries
	r.Post(cfg.WebhookPath, postUpdate(deps.Updates, cfg.WebhookSecret).ServeHTTP)

	if !cfg.operatorRoutes() {
		logger.Warn().Msg("ADMIN_TOKEN not set in production, operator routes disabled")
		return r
	}

	// Operator routes
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin(cfg.AdminToken))

		r.Post("/webhook/set", postWebhookSet(deps.Webhooks, cfg.DefaultURL).ServeHTTP)
		r.Get("/webhook", getWebhook(deps.Webhooks).ServeHTTP)
		r.Delete("/webhook", deleteWebhook(deps.Webhooks).ServeHTTP)
		if deps.Collector != nil {
			r.Get("/stats", getStats(deps.Collector).ServeHTTP)
		}
		if deps.Documents != nil {
			r.Post("/documents/reload", postDocumentsReload(deps.Documents).ServeHTTP)
		}
	})

	return r
}
