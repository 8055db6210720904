package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/emi-ledger/internal/cache"
	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/logger"
	"github.com/segyhp/emi-ledger/internal/repository"
	"github.com/segyhp/emi-ledger/internal/service"

	"github.com/robfig/cron/v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.New(cfg.Logging)
	slog.Info("starting EMI scheduler")

	ctx := context.Background()

	db, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var store cache.Store = cache.Noop{}
	if redisClient, err := cache.OpenRedis(ctx, cfg.Redis); err != nil {
		slog.Warn("redis unavailable, settled payments will not invalidate cached views", "error", err)
	} else {
		defer redisClient.Close()
		store = cache.NewRedisCache(redisClient, "emi:cache:")
	}

	uow := repository.NewUnitOfWork(db)
	reports := repository.NewReportRepository(db)

	paymentService := service.NewPaymentService(uow, service.NewKeyedMutex(), store, cfg)
	defer paymentService.Close()

	jobs := &jobs{
		payments:  paymentService,
		reports:   service.NewReportService(uow, reports, store, cfg),
		settleAge: cfg.Business.GatewaySettleDelay,
	}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.Location()),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)

	if err := registerJobs(c, cfg.Scheduler, jobs); err != nil {
		slog.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	c.Start()
	slog.Info("scheduler started", "timezone", cfg.Scheduler.Timezone)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down scheduler")
	<-c.Stop().Done()
	slog.Info("scheduler stopped")
}
