package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tripmate/internal/amqp"
	"tripmate/internal/auth"
	"tripmate/internal/blob"
	"tripmate/internal/cache"
	"tripmate/internal/config"
	apphttp "tripmate/internal/http"
	"tripmate/internal/log"
	"tripmate/internal/metrics"
	"tripmate/internal/services"
	"tripmate/internal/storage"
	"tripmate/internal/watch"
)

func main() {
	// Load .env for local development; in containers the env is injected.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: log.ComponentApp,
		Format:    cfg.LogFormat,
	})
	slog.SetDefault(logger.Logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	blobs, err := blob.NewFSStore(cfg.BlobRoot, cfg.BlobBaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize blob store", "error", err, "root", cfg.BlobRoot)
		os.Exit(1)
	}

	// The broker is optional: without it the API still works, only the
	// sync worker stops receiving change events.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without change events", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	hub := watch.NewHub(logger)
	m := metrics.New()

	authService := auth.NewService(
		repo,
		auth.NewPasswordAuthenticator(repo),
		auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration),
		auth.NewLogMailer(logger),
		logger,
	)
	tripService := services.NewTripService(repo, amqpClient, hub, m, logger)
	expenseService := services.NewExpenseService(repo, amqpClient, hub, m, logger)
	profileService := services.NewProfileService(repo, blobs, logger)

	caches := cache.NewManager(logger)
	caches.Register(expenseService.SummaryCache())

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:     authService,
		Trips:    tripService,
		Expenses: expenseService,
		Profile:  profileService,
		Hub:      hub,
		Metrics:  m,
		Blobs:    blobs,
		Logger:   logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Starting tripmate server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		return caches.Run(ctx, 10*time.Minute)
	})

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
