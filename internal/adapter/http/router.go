package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/spendtrack/internal/adapter/http/handler"
	"github.com/iho/spendtrack/internal/adapter/http/middleware"
	"github.com/iho/spendtrack/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger             zerolog.Logger
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler
	// RateLimiter gates every route when set.
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	// TokenVerifier turns on bearer auth for /api/transactions when set.
	TokenVerifier  middleware.TokenVerifier
	MetricsHandler http.Handler
	// TrustProxyHeaders takes the client address from X-Forwarded-For,
	// X-Real-IP or True-Client-IP. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.TokenVerifier != nil {
		r.Use(middleware.OptionalAuth(cfg.TokenVerifier))
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.HealthHandler.Liveness)
		r.Get("/ready", cfg.HealthHandler.Readiness)

		r.Route("/transactions", func(r chi.Router) {
			if cfg.TokenVerifier != nil {
				r.Use(middleware.RequireAuth)
			}

			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, handler.HandleError).Wrap)
			}

			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/summary/{userID}", cfg.TransactionHandler.Summary)
			r.Get("/summary/{userID}/categories", cfg.TransactionHandler.CategorySummary)
			r.Get("/{userID}", cfg.TransactionHandler.ListByUser)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
		})
	})

	return r
}
