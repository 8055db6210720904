package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/emi-ledger/internal/cache"
	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/handler"
	"github.com/segyhp/emi-ledger/internal/logger"
	"github.com/segyhp/emi-ledger/internal/middleware"
	"github.com/segyhp/emi-ledger/internal/repository"
	"github.com/segyhp/emi-ledger/internal/service"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.New(cfg.Logging)

	ctx := context.Background()

	// Initialize database
	db, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Redis; without it the API runs with no cache and no idempotency replay
	var (
		redisClient *redis.Client
		redisCmd    redis.Cmdable
		store       cache.Store = cache.Noop{}
	)
	redisClient, err = cache.OpenRedis(ctx, cfg.Redis)
	switch {
	case err == nil:
		defer redisClient.Close()
		redisCmd = redisClient
		store = cache.NewRedisCache(redisClient, "emi:cache:")
	case cfg.Business.PaymentLockBackend == config.LockBackendRedis:
		slog.Error("redis is required by the payment lock backend", "error", err)
		os.Exit(1)
	default:
		slog.Warn("redis unavailable, running without cache", "error", err)
	}

	var locker service.Locker = service.NewKeyedMutex()
	if cfg.Business.PaymentLockBackend == config.LockBackendRedis {
		locker = service.NewRedisLocker(redisClient, "emi:lock:", cfg.Business.PaymentLockTTL)
	}

	// Initialize services
	uow := repository.NewUnitOfWork(db)
	reports := repository.NewReportRepository(db)

	applicationService := service.NewApplicationService(uow, reports, store, cfg)
	paymentService := service.NewPaymentService(uow, locker, store, cfg)
	reportService := service.NewReportService(uow, reports, store, cfg)
	catalogService := service.NewCatalogService(uow, store)

	handlers := handler.Handlers{
		Applications: handler.NewApplicationHandler(applicationService),
		Payments:     handler.NewPaymentHandler(paymentService),
		Reports:      handler.NewReportHandler(reportService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Health:       handler.NewHealthHandler(db, redisCmd, cfg.Health.Timeout),
	}
	if redisClient != nil {
		handlers.Idempotency = middleware.Idempotency(redisClient, "emi:idem:", cfg.Business.IdempotencyTTL)
	}

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// pending gateway payments are left for the scheduler sweep
	paymentService.Close()

	slog.Info("server exited")
}
