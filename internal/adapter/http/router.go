package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/adapter/http/handler"
	"github.com/iho/bookkeeper/internal/adapter/http/middleware"
	"github.com/iho/bookkeeper/internal/infrastructure/metrics"
	"github.com/iho/bookkeeper/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	BalanceHandler   *handler.BalanceHandler
	EntryHandler     *handler.EntryHandler
	PeriodHandler    *handler.PeriodHandler
	ReportHandler    *handler.ReportHandler
	LedgerHandler    *handler.LedgerHandler
	ImportHandler    *handler.ImportHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger).Wrap)
	r.Use(middleware.Recovery(logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).
				WithTTL(cfg.IdempotencyTTL).
				WithLogger(logger)
			r.Use(idempotency.Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Register)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{name}", cfg.AccountHandler.Get)
			r.Post("/{name}/deactivate", cfg.AccountHandler.Deactivate)
			r.Get("/{name}/balance", cfg.BalanceHandler.Balance)
			r.Get("/{name}/ledger", cfg.BalanceHandler.Ledger)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Record)
			r.Get("/", cfg.EntryHandler.List)
			r.Post("/opening", cfg.EntryHandler.RecordOpening)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Post("/{id}/reverse", cfg.EntryHandler.Reverse)
		})

		r.Route("/periods", func(r chi.Router) {
			r.Post("/", cfg.PeriodHandler.Open)
			r.Get("/", cfg.PeriodHandler.List)
			r.Get("/{id}", cfg.PeriodHandler.Get)
			r.Post("/{id}/close", cfg.PeriodHandler.Close)
		})

		r.Get("/balances", cfg.BalanceHandler.Balances)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/trial-balance", cfg.ReportHandler.TrialBalance)
			r.Get("/income-statement", cfg.ReportHandler.IncomeStatement)
			r.Get("/balance-sheet", cfg.ReportHandler.BalanceSheet)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		r.Post("/import", cfg.ImportHandler.Import)
	})

	return r
}
