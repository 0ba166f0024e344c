package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dentaldesk/dentaldesk/internal/app"
	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/catalog"
	jobmetrics "github.com/dentaldesk/dentaldesk/internal/jobs"
	"github.com/dentaldesk/dentaldesk/internal/platform/cache"
	"github.com/dentaldesk/dentaldesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if cfg.BackendServiceToken == "" {
		logger.Warn("BACKEND_SERVICE_TOKEN is empty; category refresh calls the backend anonymously")
	}

	api := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, backend.WithLogger(logger))
	catalogService := catalog.NewService(api, redisClient, cfg.CategoryCacheTTL, logger)
	refreshJob := jobs.NewCategoryRefreshJob(catalogService, cfg.BackendServiceToken, logger, jobmetrics.NewMetrics(nil))

	refreshTask, err := jobs.NewCategoryRefreshTask("cron")
	if err != nil {
		logger.Error("build category refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.Redis().AsynqOpt(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCategoryRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.CategoryRefreshCron, Task: refreshTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("cron", cfg.CategoryRefreshCron))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
