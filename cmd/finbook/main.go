package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finbook/internal/auth"
	"finbook/internal/cache"
	"finbook/internal/config"
	"finbook/internal/events"
	apphttp "finbook/internal/http"
	applog "finbook/internal/log"
	"finbook/internal/middleware/ratelimit"
	"finbook/internal/services"
	"finbook/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", applog.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Summary cache backend: Redis when configured, in-process otherwise.
	// Either way the cache is disposable; the store stays authoritative.
	var backend cache.Backend
	if cfg.RedisURL != "" {
		redisBackend, err := cache.NewRedisBackend(cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to initialize Redis backend", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer redisBackend.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisBackend.Ping(pingCtx); err != nil {
			logger.Warn("Redis unreachable at startup, cache will fail open", applog.FieldError, err.Error())
		}
		cancel()
		backend = redisBackend
		logger.Info("Initialized Redis summary cache", "ttl", cfg.CacheTTL.String())
	} else {
		backend = cache.NewMemoryBackend()
		logger.Info("Initialized in-process summary cache", "ttl", cfg.CacheTTL.String())
	}
	summaryCache := cache.NewSummaryCache(backend, cfg.CacheTTL, logger)

	// Event publishing is optional; without AMQP the API runs standalone.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Initialized expense event publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Event publishing disabled - no AMQP_URL provided")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := services.NewAuthService(repo, tokens, logger)
	expenseService := services.NewExpenseService(repo, summaryCache, publisher, cfg.ListLimit, logger)

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	defer limiter.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, authService, expenseService, tokens, limiter, logger)

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting finbook server", "port", cfg.Port, applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
