package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/flyswatter/flyswatter/internal/api/middleware"
	"github.com/flyswatter/flyswatter/pkg/models"
)

type stubResolver struct {
	job     *models.Job
	created bool
	err     error

	gotUserID int64
	gotKey    string
}

func (s *stubResolver) Resolve(_ context.Context, userID int64, _, key string, _ map[string]any) (*models.Job, bool, error) {
	s.gotUserID = userID
	s.gotKey = key
	return s.job, s.created, s.err
}

type stubEnqueuer struct {
	calls int
	err   error
}

func (s *stubEnqueuer) EnqueueReport(context.Context, uuid.UUID, uuid.UUID) error {
	s.calls++
	return s.err
}

func testUser() *models.User {
	return &models.User{ID: 1, PublicID: uuid.New(), Username: "nicole"}
}

func authedRequest(method, target string, body string, user *models.User) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(mw.SetUser(r.Context(), user))
}

func TestSubmit_RequiresIdempotencyKey(t *testing.T) {
	h := NewReportHandler(&mockStore{}, &stubResolver{}, &stubEnqueuer{})

	r := authedRequest(http.MethodPost, "/api/v1/reports", "{}", testUser())
	w := httptest.NewRecorder()
	h.Submit(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit_NewJobIsQueued(t *testing.T) {
	job := &models.Job{
		PublicID: uuid.New(),
		JobType:  models.JobTypeGenerateReport,
		State:    models.JobStateQueued,
	}
	resolver := &stubResolver{job: job, created: true}
	enqueuer := &stubEnqueuer{}
	h := NewReportHandler(&mockStore{}, resolver, enqueuer)

	user := testUser()
	r := authedRequest(http.MethodPost, "/api/v1/reports", "{}", user)
	r.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	h.Submit(w, r)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, enqueuer.calls)
	assert.Equal(t, user.ID, resolver.gotUserID)
	assert.Equal(t, "key-1", resolver.gotKey)

	var resp struct {
		Data jobResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, job.PublicID, resp.Data.ID)
	assert.Equal(t, models.JobStateQueued, resp.Data.State)
}

func TestSubmit_ExistingSettledJobIsNotRequeued(t *testing.T) {
	job := &models.Job{
		PublicID: uuid.New(),
		JobType:  models.JobTypeGenerateReport,
		State:    models.JobStateSucceeded,
		Attempts: 1,
	}
	enqueuer := &stubEnqueuer{}
	h := NewReportHandler(&mockStore{}, &stubResolver{job: job}, enqueuer)

	r := authedRequest(http.MethodPost, "/api/v1/reports", "{}", testUser())
	r.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	h.Submit(w, r)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Zero(t, enqueuer.calls)
}

func TestSubmit_ExistingQueuedJobIsRequeued(t *testing.T) {
	job := &models.Job{PublicID: uuid.New(), State: models.JobStateQueued}
	enqueuer := &stubEnqueuer{}
	h := NewReportHandler(&mockStore{}, &stubResolver{job: job}, enqueuer)

	r := authedRequest(http.MethodPost, "/api/v1/reports", "", testUser())
	r.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	h.Submit(w, r)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, enqueuer.calls)
}

func routedRequest(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetJob_OwnerSeesArtifact(t *testing.T) {
	user := testUser()
	artifactID := int64(7)
	expires := time.Now().Add(24 * time.Hour)
	job := &models.Job{
		PublicID:   uuid.New(),
		UserID:     user.ID,
		State:      models.JobStateSucceeded,
		Attempts:   1,
		ArtifactID: &artifactID,
	}
	artifact := &models.Artifact{
		ID:        artifactID,
		PublicID:  uuid.New(),
		URL:       "https://blob.example.com/reports/abc.pdf",
		ExpiresAt: &expires,
	}
	s := &mockStore{
		getJobByPublicIDFn: func(_ context.Context, id uuid.UUID) (*models.Job, error) {
			require.Equal(t, job.PublicID, id)
			return job, nil
		},
		getArtifactByIDFn: func(_ context.Context, id int64) (*models.Artifact, error) {
			require.Equal(t, artifactID, id)
			return artifact, nil
		},
	}
	h := NewReportHandler(s, &stubResolver{}, &stubEnqueuer{})

	r := authedRequest(http.MethodGet, "/api/v1/jobs/"+job.PublicID.String(), "", user)
	r = routedRequest(r, map[string]string{"jobID": job.PublicID.String()})
	w := httptest.NewRecorder()
	h.GetJob(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data jobResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Artifact)
	assert.Equal(t, artifact.URL, resp.Data.Artifact.URL)
}

func TestGetJob_OtherUsersJobIsHidden(t *testing.T) {
	job := &models.Job{PublicID: uuid.New(), UserID: 99}
	s := &mockStore{
		getJobByPublicIDFn: func(context.Context, uuid.UUID) (*models.Job, error) {
			return job, nil
		},
	}
	h := NewReportHandler(s, &stubResolver{}, &stubEnqueuer{})

	r := authedRequest(http.MethodGet, "/api/v1/jobs/"+job.PublicID.String(), "", testUser())
	r = routedRequest(r, map[string]string{"jobID": job.PublicID.String()})
	w := httptest.NewRecorder()
	h.GetJob(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListFailedJobs(t *testing.T) {
	user := testUser()
	s := &mockStore{
		listFailedJobsByUserFn: func(_ context.Context, userID int64) ([]*models.Job, error) {
			require.Equal(t, user.ID, userID)
			return []*models.Job{
				{PublicID: uuid.New(), State: models.JobStateFailed, Attempts: 5},
			}, nil
		},
	}
	h := NewReportHandler(s, &stubResolver{}, &stubEnqueuer{})

	r := authedRequest(http.MethodGet, "/api/v1/jobs/failed", "", user)
	w := httptest.NewRecorder()
	h.ListFailedJobs(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []jobResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, models.JobStateFailed, resp.Data[0].State)
}

func TestGetArtifact_ChecksJobOwnership(t *testing.T) {
	artifact := &models.Artifact{ID: 7, PublicID: uuid.New(), JobID: 3, URL: "https://blob.example.com/x.pdf"}
	s := &mockStore{
		getArtifactByPublicIDFn: func(context.Context, uuid.UUID) (*models.Artifact, error) {
			return artifact, nil
		},
		getJobByIDFn: func(context.Context, int64) (*models.Job, error) {
			return &models.Job{ID: 3, UserID: 99}, nil
		},
	}
	h := NewReportHandler(s, &stubResolver{}, &stubEnqueuer{})

	r := authedRequest(http.MethodGet, "/api/v1/artifacts/"+artifact.PublicID.String(), "", testUser())
	r = routedRequest(r, map[string]string{"artifactID": artifact.PublicID.String()})
	w := httptest.NewRecorder()
	h.GetArtifact(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
