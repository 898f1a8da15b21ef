package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyswatter/flyswatter/internal/job"
)

type stubExecutor struct {
	err    error
	jobID  uuid.UUID
	userID uuid.UUID
}

func (s *stubExecutor) Execute(_ context.Context, jobID, userID uuid.UUID) error {
	s.jobID = jobID
	s.userID = userID
	return s.err
}

func testWorker(executor Executor) *Worker {
	return &Worker{
		mux:      asynq.NewServeMux(),
		executor: executor,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func reportTask(t *testing.T, jobID, userID uuid.UUID) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(ReportPayload{JobID: jobID, UserID: userID})
	require.NoError(t, err)
	return asynq.NewTask(TaskTypeGenerateReport, payload)
}

func TestHandleGenerateReport_Success(t *testing.T) {
	exec := &stubExecutor{}
	w := testWorker(exec)
	jobID, userID := uuid.New(), uuid.New()

	err := w.handleGenerateReport(context.Background(), reportTask(t, jobID, userID))
	require.NoError(t, err)
	assert.Equal(t, jobID, exec.jobID)
	assert.Equal(t, userID, exec.userID)
}

func TestHandleGenerateReport_TransientErrorRetries(t *testing.T) {
	exec := &stubExecutor{err: job.Transientf("blob store down")}
	w := testWorker(exec)

	err := w.handleGenerateReport(context.Background(), reportTask(t, uuid.New(), uuid.New()))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleGenerateReport_PermanentErrorSkipsRetry(t *testing.T) {
	exec := &stubExecutor{err: job.Permanentf("user gone")}
	w := testWorker(exec)

	err := w.handleGenerateReport(context.Background(), reportTask(t, uuid.New(), uuid.New()))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleGenerateReport_BadPayloadSkipsRetry(t *testing.T) {
	w := testWorker(&stubExecutor{err: errors.New("should not run")})

	err := w.handleGenerateReport(context.Background(), asynq.NewTask(TaskTypeGenerateReport, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
