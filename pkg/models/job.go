package models

import (
	"time"

	"github.com/google/uuid"
)

// JobState is the job execution state machine's stored state.
// queued -> running -> succeeded | failed. A failed job whose attempts are
// below the retry ceiling may still be retried by the queue; callers polling
// a failed job should check attempts before treating it as final.
type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateRunning   JobState = "running"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
)

// JobErrorKind is a coarse failure taxonomy tag set alongside last_error.
type JobErrorKind string

const (
	JobErrorNotFound  JobErrorKind = "not_found"
	JobErrorTransient JobErrorKind = "transient"
	JobErrorPermanent JobErrorKind = "permanent"
)

// JobResultKind tags what a succeeded job produced. Only artifact-producing
// jobs exist today, but future job types may return entity references.
type JobResultKind string

const JobResultArtifact JobResultKind = "artifact"

// JobTypeGenerateReport is the only job type currently dispatched.
const JobTypeGenerateReport = "generate-report"

// Job tracks one unit of asynchronous work. The API returns the job's public
// id on submission; the client polls GET /api/v1/jobs/{job_id} until the
// state is succeeded or failed.
//
// The triple (user_id, idempotency_key, request_hash) is unique: resubmitting
// the same logical request resolves to the existing row instead of enqueuing
// twice.
type Job struct {
	ID             int64          `db:"id"              json:"-"`
	PublicID       uuid.UUID      `db:"public_id"       json:"id"`
	UserID         int64          `db:"user_id"         json:"-"`
	JobType        string         `db:"job_type"        json:"job_type"`
	State          JobState       `db:"state"           json:"state"`
	Attempts       int            `db:"attempts"        json:"attempts"`
	IdempotencyKey string         `db:"idempotency_key" json:"-"`
	RequestHash    string         `db:"request_hash"    json:"-"`
	LastError      *string        `db:"last_error"      json:"last_error,omitempty"`
	ErrorKind      *JobErrorKind  `db:"error_kind"      json:"error_kind,omitempty"`
	ErrorPayload   []byte         `db:"error_payload"   json:"error_payload,omitempty"`
	ResultKind     *JobResultKind `db:"result_kind"     json:"result_kind,omitempty"`
	ArtifactID     *int64         `db:"artifact_id"     json:"-"`
	StartedAt      *time.Time     `db:"started_at"      json:"started_at,omitempty"`
	FinishedAt     *time.Time     `db:"finished_at"     json:"finished_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"      json:"updated_at"`
}

// Terminal reports whether the state admits no further transitions within a
// single execution. A failed job may still be re-entered by a queue retry.
func (s JobState) Terminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed
}
