package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/flyswatter/flyswatter/internal/blob"
	"github.com/flyswatter/flyswatter/internal/cache"
	"github.com/flyswatter/flyswatter/internal/report"
	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

// stateCacheTTL bounds how long a stale cached job state can outlive its row.
const stateCacheTTL = time.Hour

// Ledger is the slice of the store the executor drives. Every call commits
// before returning, so a crash between steps leaves a consistent record.
type Ledger interface {
	GetJobByPublicID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	MarkJobRunning(ctx context.Context, job *models.Job) error
	MarkJobFailed(ctx context.Context, job *models.Job, kind models.JobErrorKind, lastError string, payload []byte) error
	MarkJobSucceeded(ctx context.Context, job *models.Job, artifact *models.Artifact) error
	FinishJob(ctx context.Context, job *models.Job) error
}

// ReportGenerator produces the aggregation a report job renders.
type ReportGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (*report.MonthlyReport, error)
}

// Renderer writes a report to a local file.
type Renderer interface {
	Render(rep *report.MonthlyReport, destPath string) error
}

// BlobStore uploads a local file and returns a presigned download URL.
type BlobStore interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
	URLTTL() time.Duration
}

// Executor drives one job through its state machine: fetch, mark running, run
// the aggregation/render/upload pipeline, then mark succeeded or failed.
//
// The executor enforces the retry ceiling itself, using the ledger's attempt
// counter as ground truth. Returning a TransientError tells the queue to
// schedule another attempt; returning a PermanentError (or nil) tells it the
// job is done.
type Executor struct {
	ledger   Ledger
	cache    cache.Cache
	reports  ReportGenerator
	renderer Renderer
	blobs    BlobStore
	policy   RetryPolicy
	workDir  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewExecutor(ledger Ledger, c cache.Cache, reports ReportGenerator, renderer Renderer, blobs BlobStore, policy RetryPolicy, workDir string, logger *slog.Logger) *Executor {
	return &Executor{
		ledger:   ledger,
		cache:    c,
		reports:  reports,
		renderer: renderer,
		blobs:    blobs,
		policy:   policy,
		workDir:  workDir,
		logger:   logger,
		now:      time.Now,
	}
}

// Execute runs one attempt of the job with the given public ID.
func (e *Executor) Execute(ctx context.Context, jobID, userID uuid.UUID) error {
	job, err := e.ledger.GetJobByPublicID(ctx, jobID)
	if errors.Is(err, store.ErrNotFound) {
		// A missing row means the queue delivered an identifier the ledger
		// never issued. There is nothing to record against.
		return Permanent(fmt.Errorf("%w: %s", ErrJobNotFound, jobID))
	}
	if err != nil {
		return Transient(fmt.Errorf("load job %s: %w", jobID, err))
	}

	// Redelivery of an already-settled job is a no-op.
	if job.State == models.JobStateSucceeded || job.FinishedAt != nil {
		e.logger.Info("skipping settled job", "job_id", jobID, "state", job.State)
		return nil
	}

	if err := e.ledger.MarkJobRunning(ctx, job); err != nil {
		return Transient(fmt.Errorf("mark job %s running: %w", jobID, err))
	}
	e.mirrorState(ctx, job)
	e.logger.Info("job attempt started",
		"job_id", jobID, "job_type", job.JobType, "attempt", job.Attempts)

	runErr := e.runReportPipeline(ctx, job, userID)
	if runErr == nil {
		e.logger.Info("job succeeded", "job_id", jobID, "attempts", job.Attempts)
		return nil
	}
	return e.recordFailure(ctx, job, runErr)
}

// runReportPipeline executes the work of one generate-report attempt:
// aggregate, render to a scratch file, upload, record the artifact.
func (e *Executor) runReportPipeline(ctx context.Context, job *models.Job, userID uuid.UUID) error {
	rep, err := e.reports.Generate(ctx, userID)
	if errors.Is(err, report.ErrUserNotFound) {
		return Permanent(err)
	}
	if err != nil {
		return classify(fmt.Errorf("aggregate report: %w", err))
	}

	destPath := filepath.Join(e.workDir, fmt.Sprintf("report-%s.pdf", job.PublicID))
	defer os.Remove(destPath)

	if err := e.renderer.Render(rep, destPath); err != nil {
		return Permanent(fmt.Errorf("render report: %w", err))
	}

	url, err := e.blobs.Upload(ctx, destPath, "reports")
	if err != nil {
		return classify(err)
	}

	now := e.now().UTC()
	expires := now.Add(e.blobs.URLTTL())
	artifact := &models.Artifact{
		PublicID:  uuid.New(),
		URL:       url,
		CreatedAt: now,
		ExpiresAt: &expires,
	}
	if err := e.ledger.MarkJobSucceeded(ctx, job, artifact); err != nil {
		return Transient(fmt.Errorf("mark job succeeded: %w", err))
	}
	if err := e.ledger.FinishJob(ctx, job); err != nil {
		return Transient(fmt.Errorf("finish job: %w", err))
	}
	e.mirrorState(ctx, job)
	return nil
}

// recordFailure writes the failure into the ledger, then decides the exit:
// transient with attempts remaining re-raises for the queue to retry without
// finishing; anything else finalizes the job.
func (e *Executor) recordFailure(ctx context.Context, job *models.Job, runErr error) error {
	kind := errorKind(runErr)
	payload := errorPayload(kind, runErr, job.Attempts)

	if err := e.ledger.MarkJobFailed(ctx, job, kind, runErr.Error(), payload); err != nil {
		e.logger.Error("recording job failure failed", "job_id", job.PublicID, "error", err)
		return Transient(fmt.Errorf("mark job failed: %w", err))
	}
	e.mirrorState(ctx, job)

	if IsTransient(runErr) && !e.policy.Exhausted(job.Attempts) {
		e.logger.Warn("job attempt failed, will retry",
			"job_id", job.PublicID, "attempt", job.Attempts,
			"max_attempts", e.policy.MaxAttempts, "error", runErr)
		return runErr
	}

	if err := e.ledger.FinishJob(ctx, job); err != nil {
		return Transient(fmt.Errorf("finish failed job: %w", err))
	}
	e.logger.Error("job failed terminally",
		"job_id", job.PublicID, "attempts", job.Attempts, "error_kind", kind, "error", runErr)

	if IsTransient(runErr) {
		// Retries exhausted: the error stops being retryable.
		return Permanent(runErr)
	}
	return runErr
}

// mirrorState pushes the job's state into the cache for cheap polling. The
// cache is advisory; failures are logged and ignored.
func (e *Executor) mirrorState(ctx context.Context, job *models.Job) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetJobState(ctx, job.PublicID, string(job.State), stateCacheTTL); err != nil {
		e.logger.Warn("caching job state failed", "job_id", job.PublicID, "error", err)
	}
}

// classify maps an unwrapped pipeline error to the retry taxonomy. Blob store
// failures are network-dependent and worth retrying; everything else that
// arrives untagged is treated as permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) || IsPermanent(err) {
		return err
	}
	var blobErr *blob.Error
	if errors.As(err, &blobErr) {
		return Transient(err)
	}
	return Permanent(err)
}

func errorKind(err error) models.JobErrorKind {
	switch {
	case errors.Is(err, report.ErrUserNotFound), errors.Is(err, ErrJobNotFound):
		return models.JobErrorNotFound
	case IsTransient(err):
		return models.JobErrorTransient
	default:
		return models.JobErrorPermanent
	}
}

func errorPayload(kind models.JobErrorKind, err error, attempt int) []byte {
	payload, marshalErr := json.Marshal(map[string]any{
		"kind":    kind,
		"message": err.Error(),
		"attempt": attempt,
	})
	if marshalErr != nil {
		return nil
	}
	return payload
}
