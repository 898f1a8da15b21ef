package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

// emptyPayloadSentinel is hashed in place of a nil or empty payload so that
// "no payload" still produces a stable, non-empty request hash.
var emptyPayloadSentinel = map[string]bool{"__empty__": true}

// RequestHash returns the canonical fingerprint of a request payload: the
// hex-encoded SHA-256 of its JSON encoding. encoding/json writes map keys in
// sorted order with no insignificant whitespace, so two semantically equal
// payloads hash identically regardless of how the caller assembled them.
func RequestHash(payload map[string]any) (string, error) {
	var doc any = payload
	if len(payload) == 0 {
		doc = emptyPayloadSentinel
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode request payload: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// ResolverStore is the slice of the store the resolver needs.
type ResolverStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	FindJobByRequest(ctx context.Context, userID int64, idempotencyKey, requestHash string) (*models.Job, error)
}

// Resolver implements idempotent job submission: the same (user, key, payload)
// triple always resolves to the same ledger row, however many times it is
// submitted.
type Resolver struct {
	store ResolverStore
	now   func() time.Time
}

func NewResolver(s ResolverStore) *Resolver {
	return &Resolver{store: s, now: time.Now}
}

// Resolve finds the existing job for the request triple or creates a new
// queued one. created reports whether a new row was inserted, i.e. whether
// the caller should enqueue the work.
//
// Two racing submissions of the same triple both try to insert; the loser
// hits the unique constraint and re-reads the winner's row, so exactly one
// job exists afterwards and both callers observe it.
func (r *Resolver) Resolve(ctx context.Context, userID int64, jobType, idempotencyKey string, payload map[string]any) (job *models.Job, created bool, err error) {
	hash, err := RequestHash(payload)
	if err != nil {
		return nil, false, err
	}

	existing, err := r.store.FindJobByRequest(ctx, userID, idempotencyKey, hash)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("look up job by request: %w", err)
	}

	now := r.now().UTC()
	fresh := &models.Job{
		PublicID:       uuid.New(),
		UserID:         userID,
		JobType:        jobType,
		State:          models.JobStateQueued,
		IdempotencyKey: idempotencyKey,
		RequestHash:    hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = r.store.CreateJob(ctx, fresh)
	if err == nil {
		return fresh, true, nil
	}
	if !errors.Is(err, store.ErrDuplicateKey) {
		return nil, false, fmt.Errorf("create job: %w", err)
	}

	// Lost the insert race; the winner's row must exist now.
	winner, err := r.store.FindJobByRequest(ctx, userID, idempotencyKey, hash)
	if err != nil {
		return nil, false, fmt.Errorf("re-read job after duplicate insert: %w", err)
	}
	return winner, false, nil
}
