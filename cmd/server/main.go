// Package main is the entrypoint for the Flyswatter API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flyswatter/flyswatter/internal/api"
	"github.com/flyswatter/flyswatter/internal/api/handler"
	mw "github.com/flyswatter/flyswatter/internal/api/middleware"
	"github.com/flyswatter/flyswatter/internal/auth"
	"github.com/flyswatter/flyswatter/internal/blob"
	"github.com/flyswatter/flyswatter/internal/cache"
	"github.com/flyswatter/flyswatter/internal/config"
	"github.com/flyswatter/flyswatter/internal/job"
	"github.com/flyswatter/flyswatter/internal/queue"
	"github.com/flyswatter/flyswatter/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create blob store (the server never uploads, but failing here beats
	// failing inside the first report job)
	blobs, err := blob.NewMinioStore(cfg.Blob)
	if err != nil {
		return fmt.Errorf("create blob store: %w", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure blob bucket: %w", err)
	}
	slog.Info("blob store ready", "bucket", cfg.Blob.Bucket)

	// 6. Create store and queue client
	pgStore := store.NewPostgresStore(pool)

	queueClient, err := queue.NewClient(cfg.Redis.URL, cfg.Jobs.MaxAttempts)
	if err != nil {
		return fmt.Errorf("create queue client: %w", err)
	}
	defer queueClient.Close()

	// 7. Build router with dependencies
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	authMW := mw.NewAuth(pgStore, issuer)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	users := handler.NewUserHandler(pgStore)
	authH := handler.NewAuthHandler(pgStore, issuer, cfg.Auth.RefreshTTL)
	projects := handler.NewProjectHandler(pgStore)
	issues := handler.NewIssueHandler(pgStore)
	comments := handler.NewCommentHandler(pgStore)
	reports := handler.NewReportHandler(pgStore, job.NewResolver(pgStore), queueClient)

	deps := api.Dependencies{
		Auth:      authMW,
		RateLimit: rateLimit,

		HealthHandler: handler.NewHealthHandler(pgStore, redisCache),

		RegisterHandler: users.Register,
		TokenHandler:    authH.Token,
		RefreshHandler:  authH.Refresh,
		LogoutHandler:   authH.Logout,

		CurrentUserHandler: users.Me,
		ListUsersHandler:   users.List,
		GetUserHandler:     users.Get,
		UpdateUserHandler:  users.Update,
		DeleteUserHandler:  users.Delete,

		CreateProject:   projects.Create,
		ListProjects:    projects.List,
		GetProject:      projects.Get,
		GetProjectByKey: projects.GetByKey,
		UpdateProject:   projects.Update,

		CreateIssue: issues.Create,
		ListIssues:  issues.List,
		GetIssue:    issues.Get,
		UpdateIssue: issues.Update,
		DeleteIssue: issues.Delete,

		CreateComment: comments.Create,
		ListComments:  comments.List,
		UpdateComment: comments.Update,
		DeleteComment: comments.Delete,

		SubmitReport:   reports.Submit,
		GetJob:         reports.GetJob,
		ListJobs:       reports.ListJobs,
		ListFailedJobs: reports.ListFailedJobs,
		GetArtifact:    reports.GetArtifact,
		ListArtifacts:  reports.ListArtifacts,
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
