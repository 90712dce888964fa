package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/tripledger/internal/adapter/http"
	"github.com/iho/tripledger/internal/adapter/http/handler"
	"github.com/iho/tripledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/tripledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/tripledger/internal/adapter/repository/redis"
	"github.com/iho/tripledger/internal/infrastructure/auth"
	"github.com/iho/tripledger/internal/infrastructure/config"
	"github.com/iho/tripledger/internal/infrastructure/eventpublisher"
	"github.com/iho/tripledger/internal/infrastructure/logger"
	"github.com/iho/tripledger/internal/infrastructure/metrics"
	"github.com/iho/tripledger/internal/infrastructure/postgres"
	"github.com/iho/tripledger/internal/infrastructure/redis"
	"github.com/iho/tripledger/internal/ledger"
	"github.com/iho/tripledger/internal/usecase"
)

const rateLimiterCleanupInterval = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})
	log.Logger = appLogger

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
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

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier().WithLogger(appLogger)
	idGen := postgresRepo.NewULIDGenerator()
	userRepo := postgresRepo.NewUserRepository(pool)
	tripRepo := postgresRepo.NewTripRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	appMetrics := metrics.New()
	engine := ledger.New()

	// Initialize use cases
	userUC := usecase.NewUserUseCase(userRepo)
	tripUC := usecase.NewTripUseCase(txManager, tripRepo, userRepo, outboxRepo, idGen)
	expenseUC := usecase.NewExpenseUseCase(txManager, tripRepo, expenseRepo, outboxRepo, cache, idGen, retrier)
	paymentUC := usecase.NewPaymentUseCase(txManager, tripRepo, paymentRepo, outboxRepo, cache, idGen)
	dashboardUC := usecase.NewDashboardUseCase(tripRepo, expenseRepo, paymentRepo, engine, cache, cfg.DashboardCacheTTL, appMetrics)
	reconciliationUC := usecase.NewReconciliationUseCase(tripRepo, expenseRepo, paymentRepo, txManager, outboxRepo, idGen, engine, appMetrics)

	// Authentication
	authenticator := newAuthenticator(cfg, userUC)
	if !cfg.AuthEnabled {
		log.Warn().Msg("auth disabled: X-User-ID header identities are accepted")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TripHandler:      handler.NewTripHandler(tripUC),
		ExpenseHandler:   handler.NewExpenseHandler(expenseUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		LedgerHandler:    handler.NewLedgerHandler(dashboardUC, reconciliationUC),
		UserHandler:      handler.NewUserHandler(userUC),
		HealthHandler:    handler.NewHealthHandler(postgresRepo.NewChecker(pool), redis.NewChecker(redisClient)),
		Authenticator:    authenticator,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Logger:           &appLogger,
	})

	// Event publisher drains the outbox to redis pub/sub, or to the log when
	// no channel is configured.
	var sink eventpublisher.Publisher = eventpublisher.NewLogPublisher(appLogger)
	if cfg.EventsChannel != "" {
		sink = eventpublisher.NewRedisPublisher(redisClient, cfg.EventsChannel)
	}
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  sink,
		Observer:   appMetrics,
		Logger:     appLogger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("event publisher: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rateLimiter.RunCleanup(gctx, rateLimiterCleanupInterval)
		return nil
	})

	// Graceful shutdown on signal or worker failure
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// newAuthenticator verifies bearer tokens whenever a secret is configured and
// accepts header identities only while AUTH_ENABLED is off.
func newAuthenticator(cfg *config.Config, syncer middleware.ProfileSyncer) *middleware.Authenticator {
	var verifier middleware.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}
	return middleware.NewAuthenticator(verifier, syncer, !cfg.AuthEnabled)
}
