package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	mw "github.com/flyswatter/flyswatter/internal/api/middleware"
	"github.com/flyswatter/flyswatter/internal/api/response"
	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

// Resolver resolves a report submission to its ledger row. Implemented by
// *job.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, userID int64, jobType, idempotencyKey string, payload map[string]any) (*models.Job, bool, error)
}

// Enqueuer hands a resolved job to the queue. Implemented by *queue.Client.
type Enqueuer interface {
	EnqueueReport(ctx context.Context, jobID, userID uuid.UUID) error
}

// ReportHandler serves report submission and the job/artifact read model.
type ReportHandler struct {
	store    store.Store
	resolver Resolver
	queue    Enqueuer
}

func NewReportHandler(s store.Store, resolver Resolver, queue Enqueuer) *ReportHandler {
	return &ReportHandler{store: s, resolver: resolver, queue: queue}
}

type artifactResponse struct {
	ID        uuid.UUID  `json:"id"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type jobResponse struct {
	ID         uuid.UUID         `json:"id"`
	JobType    string            `json:"job_type"`
	State      models.JobState   `json:"state"`
	Attempts   int               `json:"attempts"`
	LastError  *string           `json:"last_error,omitempty"`
	ErrorKind  *string           `json:"error_kind,omitempty"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	Artifact   *artifactResponse `json:"artifact,omitempty"`
}

func toJobResponse(j *models.Job, artifact *models.Artifact) jobResponse {
	out := jobResponse{
		ID:         j.PublicID,
		JobType:    j.JobType,
		State:      j.State,
		Attempts:   j.Attempts,
		LastError:  j.LastError,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		CreatedAt:  j.CreatedAt,
	}
	if j.ErrorKind != nil {
		kind := string(*j.ErrorKind)
		out.ErrorKind = &kind
	}
	if artifact != nil {
		out.Artifact = &artifactResponse{
			ID:        artifact.PublicID,
			URL:       artifact.URL,
			CreatedAt: artifact.CreatedAt,
			ExpiresAt: artifact.ExpiresAt,
		}
	}
	return out
}

// Submit handles POST /api/v1/reports. The Idempotency-Key header is
// required; resubmitting the same key and payload returns the existing job
// instead of queuing a second one.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Idempotency-Key header is required", nil)
		return
	}

	var payload map[string]any
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body", nil)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
	}

	job, created, err := h.resolver.Resolve(r.Context(), user.ID, models.JobTypeGenerateReport, key, payload)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit report job", nil)
		return
	}

	// A queued job is (re-)enqueued even when the row already existed, so a
	// submission whose enqueue failed can be repaired by resubmitting.
	// Duplicate deliveries are harmless: a settled job is a no-op for the
	// executor.
	if created || job.State == models.JobStateQueued {
		if err := h.queue.EnqueueReport(r.Context(), job.PublicID, user.PublicID); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to queue report job", nil)
			return
		}
	}

	response.Accepted(w, toJobResponse(job, nil))
}

// GetJob handles GET /api/v1/jobs/{jobID}.
func (h *ReportHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	jobID, ok := parseUUIDParam(w, r, "jobID")
	if !ok {
		return
	}

	job, err := h.store.GetJobByPublicID(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
		return
	}
	if job.UserID != user.ID && !user.Admin {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}

	var artifact *models.Artifact
	if job.ArtifactID != nil {
		artifact, err = h.store.GetArtifactByID(r.Context(), *job.ArtifactID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load artifact", nil)
			return
		}
	}

	response.JSON(w, toJobResponse(job, artifact))
}

// ListJobs handles GET /api/v1/jobs.
func (h *ReportHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	h.listJobs(w, r, false)
}

// ListFailedJobs handles GET /api/v1/jobs/failed.
func (h *ReportHandler) ListFailedJobs(w http.ResponseWriter, r *http.Request) {
	h.listJobs(w, r, true)
}

func (h *ReportHandler) listJobs(w http.ResponseWriter, r *http.Request, failedOnly bool) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	var (
		jobs []*models.Job
		err  error
	)
	if failedOnly {
		jobs, err = h.store.ListFailedJobsByUser(r.Context(), user.ID)
	} else {
		jobs, err = h.store.ListJobsByUser(r.Context(), user.ID)
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list jobs", nil)
		return
	}

	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j, nil))
	}
	response.JSON(w, out)
}

// ListArtifacts handles GET /api/v1/artifacts (admin only).
func (h *ReportHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.store.ListArtifacts(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list artifacts", nil)
		return
	}

	out := make([]artifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, artifactResponse{
			ID:        a.PublicID,
			URL:       a.URL,
			CreatedAt: a.CreatedAt,
			ExpiresAt: a.ExpiresAt,
		})
	}
	response.JSON(w, out)
}

// GetArtifact handles GET /api/v1/artifacts/{artifactID}.
func (h *ReportHandler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	artifactID, ok := parseUUIDParam(w, r, "artifactID")
	if !ok {
		return
	}

	artifact, err := h.store.GetArtifactByPublicID(r.Context(), artifactID)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Artifact not found", nil)
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load artifact", nil)
		return
	}

	owner, err := h.store.GetJobByID(r.Context(), artifact.JobID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load artifact", nil)
		return
	}
	if owner.UserID != user.ID && !user.Admin {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Artifact not found", nil)
		return
	}

	response.JSON(w, artifactResponse{
		ID:        artifact.PublicID,
		URL:       artifact.URL,
		CreatedAt: artifact.CreatedAt,
		ExpiresAt: artifact.ExpiresAt,
	})
}
