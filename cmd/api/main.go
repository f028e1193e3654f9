package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webhook-dispatch-service/config"
	httpHandler "webhook-dispatch-service/internal/adapter/http/handler"
	pgStorage "webhook-dispatch-service/internal/adapter/storage/postgres"
	redisStorage "webhook-dispatch-service/internal/adapter/storage/redis"
	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"
	"webhook-dispatch-service/internal/metrics"
	"webhook-dispatch-service/internal/service"
	"webhook-dispatch-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Webhook Dispatch Service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Metrics registry
	metrics.Register()

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.Encryption.Passphrase, cfg.Encryption.Salt)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	builder := service.NewPayloadService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize repositories and Redis stores
	deliveryLogs := pgStorage.NewDeliveryLogRepo(pool)
	registry := pgStorage.NewIntegrationRepo(pool, encSvc)
	sweepLock := redisStorage.NewSweepLock(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	providers := make([]domain.Provider, 0, len(cfg.Webhook.Providers))
	for _, p := range cfg.Webhook.Providers {
		providers = append(providers, domain.Provider(p))
	}

	// Initialize dispatch pipeline
	dispatcher := service.NewDispatchService(
		registry,
		deliveryLogs,
		builder,
		sigSvc,
		&http.Client{Timeout: cfg.Webhook.Timeout},
		providers,
		cfg.Webhook.RetryBackoff,
		cfg.Webhook.Timeout,
		logger.Component(log, "dispatcher"),
	)
	retrySvc := service.NewRetryService(
		deliveryLogs,
		dispatcher,
		sweepLock,
		cfg.Webhook.SweepBatchPerOrg,
		cfg.Webhook.SweepLockTTL,
		cfg.Webhook.Retention,
		cfg.Webhook.PruneBatchSize,
		logger.Component(log, "retry"),
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Dispatcher:     dispatcher,
		RetrySvc:       retrySvc,
		DeliveryLogs:   deliveryLogs,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// Background retry sweep (0 = external cron trigger only)
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	if cfg.Webhook.SweepInterval > 0 {
		go runTicker(workerCtx, cfg.Webhook.SweepInterval, func(ctx context.Context) {
			if _, err := retrySvc.ProcessRetries(ctx); err != nil {
				log.Debug().Err(err).Msg("scheduled retry sweep skipped")
			}
		})
	}
	// Retention housekeeping runs daily
	go runTicker(workerCtx, 24*time.Hour, func(ctx context.Context) {
		if _, err := retrySvc.PruneDeliveryLogs(ctx); err != nil {
			log.Error().Err(err).Msg("delivery log pruning failed")
		}
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// runTicker invokes fn on every tick until ctx is cancelled.
func runTicker(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
