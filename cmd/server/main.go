package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/corebank/bankd/internal/adapter/http"
	"github.com/corebank/bankd/internal/adapter/http/handler"
	postgresRepo "github.com/corebank/bankd/internal/adapter/repository/postgres"
	redisRepo "github.com/corebank/bankd/internal/adapter/repository/redis"
	"github.com/corebank/bankd/internal/infrastructure/auth"
	"github.com/corebank/bankd/internal/infrastructure/config"
	"github.com/corebank/bankd/internal/infrastructure/logger"
	"github.com/corebank/bankd/internal/infrastructure/metrics"
	"github.com/corebank/bankd/internal/infrastructure/notify"
	"github.com/corebank/bankd/internal/infrastructure/postgres"
	"github.com/corebank/bankd/internal/infrastructure/redis"
	"github.com/corebank/bankd/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			appMetrics.DBConnections.Set(float64(pool.Stat().TotalConns()))
		}
	}()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool).WithLockTimeout(cfg.DatabaseTimeout)
	retrier := postgresRepo.NewRetrier(log)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	operationRepo := postgresRepo.NewOperationRepository(pool)
	alertRepo := postgresRepo.NewAlertRepository(pool)
	transferRepo := postgresRepo.NewScheduledTransferRepository(pool)
	debitRepo := postgresRepo.NewScheduledDebitRepository(pool)
	creditRepo := postgresRepo.NewCreditRepository(pool)
	mandateRepo := postgresRepo.NewMandateRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool, log)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	notifier := notify.NewLogNotifier(log)
	authz := usecase.NewAuthorizer(mandateRepo)
	monitor := usecase.NewMonitor(alertRepo, idGen, cfg.AlertEscalationDays).WithMetrics(appMetrics)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, operationRepo, auditRepo, monitor, authz, notifier, idGen).
		WithRetrier(retrier).
		WithMetrics(appMetrics)
	accountUC := usecase.NewAccountUseCase(accountRepo, auditRepo, authz, ledgerUC, notifier, idGen).WithMetrics(appMetrics)
	creditUC := usecase.NewCreditUseCase(txManager, creditRepo, accountRepo, auditRepo, authz, notifier, idGen).WithMetrics(appMetrics)
	schedulerUC := usecase.NewSchedulerUseCase(
		txManager, transferRepo, debitRepo, creditRepo, accountRepo, auditRepo,
		ledgerUC, authz, idGen, log, cfg.SweepWorkers,
	).WithMetrics(appMetrics)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	transferHandler := handler.NewTransferHandler(ledgerUC, schedulerUC)
	scheduledHandler := handler.NewScheduledHandler(schedulerUC)
	creditHandler := handler.NewCreditHandler(creditUC)
	sweepHandler := handler.NewSweepHandler(schedulerUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		log.Warn().Msg("authentication disabled, all requests run as local admin")
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		LedgerHandler:    ledgerHandler,
		TransferHandler:  transferHandler,
		ScheduledHandler: scheduledHandler,
		CreditHandler:    creditHandler,
		SweepHandler:     sweepHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          appMetrics,
		JWTManager:       jwtManager,
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
