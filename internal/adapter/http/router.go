package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/tripledger/internal/adapter/http/handler"
	"github.com/iho/tripledger/internal/adapter/http/middleware"
	"github.com/iho/tripledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TripHandler    *handler.TripHandler
	ExpenseHandler *handler.ExpenseHandler
	PaymentHandler *handler.PaymentHandler
	LedgerHandler  *handler.LedgerHandler
	UserHandler    *handler.UserHandler
	HealthHandler  *handler.HealthHandler

	Authenticator    *middleware.Authenticator
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	// Logger enables request logging when set.
	Logger *zerolog.Logger
	// MetricsHandler serves /metrics; defaults to the global registry.
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		authenticator := cfg.Authenticator
		if authenticator == nil {
			authenticator = middleware.NewAuthenticator(nil, nil, false)
		}
		r.Use(authenticator.Middleware)

		// Keys are scoped to the caller, so this must run after auth.
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Get("/me", cfg.UserHandler.Me)
		r.Put("/me", cfg.UserHandler.UpdateMe)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", cfg.TripHandler.Create)
			r.Get("/", cfg.TripHandler.List)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", cfg.TripHandler.Get)

				r.Get("/participants", cfg.TripHandler.ListParticipants)
				r.Post("/participants", cfg.TripHandler.AddParticipant)

				r.Get("/expenses", cfg.ExpenseHandler.List)
				r.Post("/expenses", cfg.ExpenseHandler.Create)

				r.Get("/payments", cfg.PaymentHandler.List)
				r.Post("/payments", cfg.PaymentHandler.Create)

				r.Get("/dashboard", cfg.LedgerHandler.Dashboard)
				r.Get("/consistency", cfg.LedgerHandler.Consistency)
			})
		})
	})

	return r
}
