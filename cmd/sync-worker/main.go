package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tripmate/internal/amqp"
	"tripmate/internal/config"
	"tripmate/internal/export"
	"tripmate/internal/log"
	"tripmate/internal/metrics"
	"tripmate/internal/storage"
	"tripmate/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: log.ComponentWorker,
		Format:    cfg.LogFormat,
	})
	slog.SetDefault(logger.Logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer, err := export.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize export backend", "error", err, "backend", cfg.ExportBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	m := metrics.New()
	syncWorker := worker.NewSyncWorker(repo, writer, m, logger)

	logger.Info("Starting sync worker", "backend", cfg.ExportBackend, "queue", cfg.AMQPQueue)

	group, ctx := errgroup.WithContext(ctx)

	// Catch-up scan for rows written while the worker was down, then one
	// batch per interval for anything a lost event left behind.
	group.Go(func() error {
		return syncWorker.Run(ctx, cfg.SyncInterval, cfg.SyncBatchSize)
	})

	group.Go(func() error {
		return amqpClient.ConsumeChanges(ctx, func(event *amqp.ChangeEvent) error {
			err := syncWorker.HandleChange(ctx, event)
			if err != nil {
				m.EventsConsumed.WithLabelValues("error").Inc()
				return err
			}
			m.EventsConsumed.WithLabelValues("ok").Inc()
			return nil
		})
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
