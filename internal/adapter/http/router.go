package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/bankcore/internal/adapter/http/handler"
	"github.com/iho/bankcore/internal/adapter/http/middleware"
	"github.com/iho/bankcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransactionHandler    *handler.TransactionHandler
	LoanHandler           *handler.LoanHandler
	ReconciliationHandler *handler.ReconciliationHandler
	AlertHandler          *handler.AlertHandler
	LedgerHandler         *handler.LedgerHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	IdempotencyKeyTTL     time.Duration
	RateLimiter           *middleware.RateLimiter
	Logger                zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyKeyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{id}", cfg.TransactionHandler.GetAccount)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Get("/{id}/entries", cfg.TransactionHandler.GetEntries)
			r.Post("/{id}/approve", cfg.TransactionHandler.Approve)
			r.Post("/{id}/reject", cfg.TransactionHandler.Reject)
			r.Post("/{id}/reverse", cfg.TransactionHandler.Reverse)
		})

		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.Get("/{id}", cfg.LoanHandler.Get)
			r.Post("/{id}/disburse", cfg.LoanHandler.Disburse)
			r.Post("/{id}/repayments", cfg.LoanHandler.Repay)
		})

		// Statements and reconciliation
		r.Route("/statements", func(r chi.Router) {
			r.Post("/", cfg.ReconciliationHandler.RegisterStatement)
			r.Post("/{id}/lines", cfg.ReconciliationHandler.UploadLines)
			r.Post("/{id}/reconcile", cfg.ReconciliationHandler.Reconcile)
			r.Get("/{id}/lines/unmatched", cfg.ReconciliationHandler.ListUnmatched)
		})
		r.Post("/reconciliation/matches", cfg.ReconciliationHandler.ManualMatch)

		// Risk alerts
		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", cfg.AlertHandler.ListOpen)
			r.Post("/{id}/resolve", cfg.AlertHandler.Resolve)
		})

		// Ledger-wide operations
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		r.Get("/audit/{entityType}/{entityID}", cfg.LedgerHandler.AuditTrail)
	})

	return r
}
