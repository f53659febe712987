package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/bankcore/internal/adapter/http"
	"github.com/iho/bankcore/internal/adapter/http/handler"
	"github.com/iho/bankcore/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/bankcore/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankcore/internal/adapter/repository/redis"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/config"
	"github.com/iho/bankcore/internal/infrastructure/logger"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
	"github.com/iho/bankcore/internal/infrastructure/postgres"
	"github.com/iho/bankcore/internal/infrastructure/redis"
	"github.com/iho/bankcore/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "bankcore",
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
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

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	glRepo := postgresRepo.NewGLRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	statementRepo := postgresRepo.NewStatementRepository(pool)
	fiscalRepo := postgresRepo.NewFiscalPeriodRepository(pool)
	alertRepo := postgresRepo.NewRiskAlertRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	postingCfg := usecase.PostingConfig{
		GLVaultAccountID:    cfg.GLVaultAccountID,
		GLDepositsAccountID: cfg.GLDepositsAccountID,
		LargeTxThreshold:    cfg.LargeTxThreshold,
		ApprovalLimits: domain.ApprovalLimits{
			domain.RoleTeller:  cfg.ApprovalLimitTeller,
			domain.RoleFinance: cfg.ApprovalLimitFinance,
			domain.RoleManager: cfg.ApprovalLimitManager,
			domain.RoleAdmin:   cfg.ApprovalLimitAdmin,
		},
	}

	// Initialize use cases
	postingUC := usecase.NewPostingUseCase(txManager, accountRepo, txnRepo, glRepo, fiscalRepo, alertRepo, auditRepo, idGen, postingCfg, appMetrics)
	loanUC := usecase.NewLoanUseCase(txManager, loanRepo, accountRepo, txnRepo, glRepo, fiscalRepo, alertRepo, auditRepo, idGen, postingCfg, appMetrics)
	reconUC := usecase.NewReconciliationUseCase(txManager, statementRepo, glRepo, auditRepo, idGen, cfg.GLVaultAccountID, appMetrics)
	alertUC := usecase.NewAlertUseCase(txManager, alertRepo, auditRepo, idGen, appMetrics)
	ledgerUC := usecase.NewLedgerUseCase(glRepo, auditRepo)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler:    handler.NewTransactionHandler(postingUC),
		LoanHandler:           handler.NewLoanHandler(loanUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		AlertHandler:          handler.NewAlertHandler(alertUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
		IdempotencyKeyTTL:     cfg.IdempotencyTTL,
		RateLimiter:           middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:                appLogger,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
