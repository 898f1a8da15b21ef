package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/flyswatter/flyswatter/internal/job"
)

// Executor runs one attempt of a job. Implemented by *job.Executor.
type Executor interface {
	Execute(ctx context.Context, jobID, userID uuid.UUID) error
}

// WorkerConfig tunes the asynq server that consumes report tasks.
type WorkerConfig struct {
	RedisURL    string
	Concurrency int
	TaskTimeout time.Duration
	RetryPolicy job.RetryPolicy
}

// Worker consumes queued tasks and drives the executor. Retry scheduling is
// delegated to asynq, but which failures are retryable is the executor's
// decision: permanent errors are wrapped in asynq.SkipRetry.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	executor Executor
	logger   *slog.Logger

	// taskTimeout bounds one attempt; zero means no bound.
	taskTimeout time.Duration
}

func NewWorker(cfg WorkerConfig, executor Executor, logger *slog.Logger) (*Worker, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueReports: 1,
		},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			// n is the number of attempts the task has made so far.
			return cfg.RetryPolicy.Delay(n)
		},
		Logger: asynqLogger{logger},
	})

	w := &Worker{
		server:      server,
		mux:         asynq.NewServeMux(),
		executor:    executor,
		logger:      logger,
		taskTimeout: cfg.TaskTimeout,
	}
	w.mux.HandleFunc(TaskTypeGenerateReport, w.handleGenerateReport)
	return w, nil
}

func (w *Worker) handleGenerateReport(ctx context.Context, task *asynq.Task) error {
	var payload ReportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode report payload: %v: %w", err, asynq.SkipRetry)
	}

	if w.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.taskTimeout)
		defer cancel()
	}

	err := w.executor.Execute(ctx, payload.JobID, payload.UserID)
	if err == nil {
		return nil
	}
	if job.IsTransient(err) {
		// Re-raise so asynq schedules another attempt.
		return err
	}
	// The ledger already holds the terminal failure; tell asynq not to retry.
	return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
}

// Run blocks serving tasks until Shutdown is called.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown waits for in-flight tasks and stops the server.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// asynqLogger adapts slog to asynq's logger interface.
type asynqLogger struct {
	logger *slog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
