package models

import (
	"time"

	"github.com/google/uuid"
)

// Artifact is the durable pointer from a succeeded job to its output file.
// Created exactly once, in the same transaction as the job's transition to
// succeeded, and immutable thereafter. URL is a presigned blob-store link and
// stops working after ExpiresAt.
type Artifact struct {
	ID        int64      `db:"id"         json:"-"`
	PublicID  uuid.UUID  `db:"public_id"  json:"id"`
	JobID     int64      `db:"job_id"     json:"-"`
	URL       string     `db:"url"        json:"url"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}
