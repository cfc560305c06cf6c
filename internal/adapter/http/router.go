package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corebank/bankd/internal/adapter/http/handler"
	"github.com/corebank/bankd/internal/adapter/http/middleware"
	"github.com/corebank/bankd/internal/domain"
	"github.com/corebank/bankd/internal/infrastructure/auth"
	"github.com/corebank/bankd/internal/infrastructure/metrics"
	"github.com/corebank/bankd/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	LedgerHandler    *handler.LedgerHandler
	TransferHandler  *handler.TransferHandler
	ScheduledHandler *handler.ScheduledHandler
	CreditHandler    *handler.CreditHandler
	SweepHandler     *handler.SweepHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          *metrics.Metrics

	// JWTManager enables bearer authentication. When nil every request
	// runs as a local administrator, for development setups only.
	JWTManager *auth.JWTManager
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(middleware.StaticUser(&domain.User{
				ID:   "local-admin",
				Name: "local admin",
				Role: domain.RoleAdmin,
			}))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.LedgerHandler.GetBalance)
			r.Get("/{id}/operations", cfg.LedgerHandler.ListOperations)
			r.Get("/{id}/alerts", cfg.LedgerHandler.ListAlerts)
			r.Post("/{id}/suspend", cfg.AccountHandler.Suspend)
			r.Post("/{id}/reactivate", cfg.AccountHandler.Reactivate)
			r.Post("/{id}/close", cfg.AccountHandler.Close)
		})

		// Journal operations
		r.Post("/operations", cfg.LedgerHandler.RecordOperation)

		// Transfers, immediate or scheduled
		r.Post("/transfers", cfg.TransferHandler.Create)

		// Scheduled items
		r.Route("/scheduled", func(r chi.Router) {
			r.Route("/transfers", func(r chi.Router) {
				r.Get("/", cfg.ScheduledHandler.ListTransfers)
				r.Patch("/{id}", cfg.ScheduledHandler.EditTransfer)
				r.Delete("/{id}", cfg.ScheduledHandler.CancelTransfer)
			})
			r.Route("/debits", func(r chi.Router) {
				r.Post("/", cfg.ScheduledHandler.CreateDebit)
				r.Get("/", cfg.ScheduledHandler.ListDebits)
				r.Patch("/{id}", cfg.ScheduledHandler.EditDebit)
				r.Delete("/{id}", cfg.ScheduledHandler.CancelDebit)
			})
		})

		// Credits
		r.Route("/credits", func(r chi.Router) {
			r.Post("/", cfg.CreditHandler.Issue)
			r.Get("/", cfg.CreditHandler.List)
			r.Get("/{id}", cfg.CreditHandler.Get)
			r.Get("/{id}/schedule", cfg.CreditHandler.ListSchedule)
			r.Patch("/{id}", cfg.CreditHandler.Update)
			r.Post("/{id}/installments", cfg.CreditHandler.AddInstallment)
		})
		r.Delete("/installments/{id}", cfg.CreditHandler.DeleteInstallment)

		// Scheduler and ledger maintenance
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/scheduler/sweep", cfg.SweepHandler.Run)
			r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}
