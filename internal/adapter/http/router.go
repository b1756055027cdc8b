package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/klarbok/klarbok/internal/adapter/http/handler"
	"github.com/klarbok/klarbok/internal/adapter/http/middleware"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	VerificationHandler *handler.VerificationHandler
	AccrualHandler      *handler.AccrualHandler
	ClosingHandler      *handler.ClosingHandler
	CorrectionHandler   *handler.CorrectionHandler
	ReportHandler       *handler.ReportHandler
	ExportHandler       *handler.ExportHandler
	AccountHandler      *handler.AccountHandler
	LedgerHandler       *handler.LedgerHandler
	HealthHandler       *handler.HealthHandler
	IdempotencyStore    usecase.IdempotencyStore
	IdempotencyTTL      time.Duration
	Metrics             *metrics.Metrics
	RateLimiter         *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(log.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.CompanyContext)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Verifications
		r.Route("/verifications", func(r chi.Router) {
			r.Post("/", cfg.VerificationHandler.Create)
			r.Post("/batch", cfg.VerificationHandler.CreateBatch)
			r.Get("/", cfg.VerificationHandler.List)
			r.Get("/{id}", cfg.VerificationHandler.Get)
		})

		// Accruals
		r.Route("/accruals", func(r chi.Router) {
			r.Post("/preview", cfg.AccrualHandler.Preview)
			r.Post("/", cfg.AccrualHandler.Execute)
		})

		// Year-end closing
		r.Route("/closing/{year}", func(r chi.Router) {
			r.Get("/preview", cfg.ClosingHandler.Preview)
			r.Post("/execute", cfg.ClosingHandler.Execute)
		})

		// Corrections
		r.Post("/corrections", cfg.CorrectionHandler.Create)

		// Tax reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", cfg.ReportHandler.List)
			r.Post("/", cfg.ReportHandler.CreateDraft)
			r.Get("/fields", cfg.ReportHandler.ComputeFields)
			r.Get("/{id}", cfg.ReportHandler.Get)
			r.Post("/{id}/submit", cfg.ReportHandler.Submit)
		})

		// Exports
		r.Route("/exports", func(r chi.Router) {
			r.Get("/sie", cfg.ExportHandler.SIE)
			r.Get("/sru", cfg.ExportHandler.SRU)
			r.Post("/agi", cfg.ExportHandler.AGI)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{code}/balance", cfg.LedgerHandler.AccountBalance)
		})

		// Ledger inspection
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/consistency", cfg.LedgerHandler.Consistency)
			r.Get("/trial-balance", cfg.LedgerHandler.TrialBalance)
		})
	})

	return r
}
