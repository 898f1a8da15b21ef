// Package main is the entrypoint for the Flyswatter report worker.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flyswatter/flyswatter/internal/blob"
	"github.com/flyswatter/flyswatter/internal/cache"
	"github.com/flyswatter/flyswatter/internal/config"
	"github.com/flyswatter/flyswatter/internal/job"
	"github.com/flyswatter/flyswatter/internal/pdf"
	"github.com/flyswatter/flyswatter/internal/queue"
	"github.com/flyswatter/flyswatter/internal/report"
	"github.com/flyswatter/flyswatter/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env,
		"concurrency", cfg.Jobs.Concurrency, "max_attempts", cfg.Jobs.MaxAttempts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	blobs, err := blob.NewMinioStore(cfg.Blob)
	if err != nil {
		return fmt.Errorf("create blob store: %w", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure blob bucket: %w", err)
	}
	slog.Info("blob store ready", "bucket", cfg.Blob.Bucket)

	pgStore := store.NewPostgresStore(pool)
	policy := job.RetryPolicy{
		MaxAttempts: cfg.Jobs.MaxAttempts,
		BaseDelay:   cfg.Jobs.RetryBaseDelay,
		MaxDelay:    cfg.Jobs.RetryMaxDelay,
	}

	executor := job.NewExecutor(
		pgStore,
		redisCache,
		report.NewGenerator(pgStore),
		pdf.NewRenderer(),
		blobs,
		policy,
		cfg.Jobs.WorkDir,
		logger,
	)

	worker, err := queue.NewWorker(queue.WorkerConfig{
		RedisURL:    cfg.Redis.URL,
		Concurrency: cfg.Jobs.Concurrency,
		TaskTimeout: cfg.Jobs.TaskTimeout,
		RetryPolicy: policy,
	}, executor, logger)
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("worker consuming", "queue", queue.QueueReports)
		errCh <- worker.Run()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("worker error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining tasks...")
	}

	worker.Shutdown()
	slog.Info("worker stopped gracefully")
	return nil
}
