package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/klarbok/klarbok/internal/adapter/http"
	"github.com/klarbok/klarbok/internal/adapter/http/handler"
	"github.com/klarbok/klarbok/internal/adapter/http/middleware"
	postgresRepo "github.com/klarbok/klarbok/internal/adapter/repository/postgres"
	redisRepo "github.com/klarbok/klarbok/internal/adapter/repository/redis"
	"github.com/klarbok/klarbok/internal/infrastructure/config"
	"github.com/klarbok/klarbok/internal/infrastructure/logging"
	"github.com/klarbok/klarbok/internal/infrastructure/metrics"
	"github.com/klarbok/klarbok/internal/infrastructure/postgres"
	"github.com/klarbok/klarbok/internal/infrastructure/redis"
	"github.com/klarbok/klarbok/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Internal packages log through slog; route it per the same config
	slog.SetDefault(logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat).Logger)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Export pool utilisation
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			m.DBConnections.Set(float64(pool.Stat().TotalConns()))
		}
	}()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	verificationRepo := postgresRepo.NewVerificationRepository(pool)
	sequenceRepo := postgresRepo.NewSequenceRepository(pool)
	periodRepo := postgresRepo.NewPeriodRepository(pool)
	reportRepo := postgresRepo.NewReportRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	verificationUC := usecase.NewVerificationUseCase(txManager, verificationRepo, sequenceRepo, accountRepo, idGen, retrier)
	accrualUC := usecase.NewAccrualUseCase(verificationUC, accountRepo, idGen)
	closingUC := usecase.NewClosingUseCase(txManager, verificationUC, verificationRepo, periodRepo, retrier)
	correctionUC := usecase.NewCorrectionUseCase(txManager, verificationUC, verificationRepo, retrier)
	ledgerUC := usecase.NewLedgerUseCase(verificationRepo, accountRepo)
	taxUC := usecase.NewTaxFieldUseCase(txManager, verificationRepo, reportRepo, periodRepo, idGen)
	exportUC := usecase.NewExportUseCase(ledgerUC, taxUC, verificationRepo, accountRepo)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		VerificationHandler: handler.NewVerificationHandler(verificationUC, m),
		AccrualHandler:      handler.NewAccrualHandler(accrualUC, m),
		ClosingHandler:      handler.NewClosingHandler(closingUC, m),
		CorrectionHandler:   handler.NewCorrectionHandler(correctionUC, m),
		ReportHandler:       handler.NewReportHandler(taxUC, m),
		ExportHandler:       handler.NewExportHandler(exportUC, m),
		AccountHandler:      handler.NewAccountHandler(accountRepo),
		LedgerHandler:       handler.NewLedgerHandler(ledgerUC),
		HealthHandler:       handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		Metrics:             m,
		RateLimiter:         middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
