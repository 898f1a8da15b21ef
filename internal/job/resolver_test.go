package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

type resolverKey struct {
	userID         int64
	idempotencyKey string
	requestHash    string
}

// memResolverStore mimics the unique constraint on the request triple.
type memResolverStore struct {
	jobs   map[resolverKey]*models.Job
	nextID int64

	// failNextCreate makes the next CreateJob report a duplicate without
	// inserting, simulating a lost insert race.
	raceWinner *models.Job
}

func newMemResolverStore() *memResolverStore {
	return &memResolverStore{jobs: make(map[resolverKey]*models.Job)}
}

func (m *memResolverStore) key(j *models.Job) resolverKey {
	return resolverKey{j.UserID, j.IdempotencyKey, j.RequestHash}
}

func (m *memResolverStore) CreateJob(_ context.Context, job *models.Job) error {
	k := m.key(job)
	if m.raceWinner != nil {
		m.jobs[m.key(m.raceWinner)] = m.raceWinner
		m.raceWinner = nil
		return store.ErrDuplicateKey
	}
	if _, exists := m.jobs[k]; exists {
		return store.ErrDuplicateKey
	}
	m.nextID++
	job.ID = m.nextID
	m.jobs[k] = job
	return nil
}

func (m *memResolverStore) FindJobByRequest(_ context.Context, userID int64, idempotencyKey, requestHash string) (*models.Job, error) {
	j, ok := m.jobs[resolverKey{userID, idempotencyKey, requestHash}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return j, nil
}

func TestRequestHash_Stability(t *testing.T) {
	a, err := RequestHash(map[string]any{"user_id": "u1", "month": "2026-03"})
	require.NoError(t, err)
	b, err := RequestHash(map[string]any{"month": "2026-03", "user_id": "u1"})
	require.NoError(t, err)

	// Key order does not matter.
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestRequestHash_Distinctness(t *testing.T) {
	empty, err := RequestHash(nil)
	require.NoError(t, err)
	emptyMap, err := RequestHash(map[string]any{})
	require.NoError(t, err)
	nonEmpty, err := RequestHash(map[string]any{"user_id": "u1"})
	require.NoError(t, err)

	assert.Equal(t, empty, emptyMap)
	assert.NotEqual(t, empty, nonEmpty)
}

func TestResolver_CreatesThenReuses(t *testing.T) {
	s := newMemResolverStore()
	r := NewResolver(s)
	ctx := context.Background()
	payload := map[string]any{"month": "2026-03"}

	first, created, err := r.Resolve(ctx, 1, models.JobTypeGenerateReport, "key-1", payload)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.JobStateQueued, first.State)
	assert.Zero(t, first.Attempts)

	second, created, err := r.Resolve(ctx, 1, models.JobTypeGenerateReport, "key-1", payload)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.PublicID, second.PublicID)
	assert.Len(t, s.jobs, 1)
}

func TestResolver_DistinguishesPayloads(t *testing.T) {
	s := newMemResolverStore()
	r := NewResolver(s)
	ctx := context.Background()

	a, created, err := r.Resolve(ctx, 1, models.JobTypeGenerateReport, "key-1", map[string]any{"month": "2026-03"})
	require.NoError(t, err)
	assert.True(t, created)

	// Same key, different payload: a distinct job.
	b, created, err := r.Resolve(ctx, 1, models.JobTypeGenerateReport, "key-1", map[string]any{"month": "2026-04"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, a.PublicID, b.PublicID)
}

func TestResolver_DistinguishesUsers(t *testing.T) {
	s := newMemResolverStore()
	r := NewResolver(s)
	ctx := context.Background()
	payload := map[string]any{"month": "2026-03"}

	a, _, err := r.Resolve(ctx, 1, models.JobTypeGenerateReport, "key-1", payload)
	require.NoError(t, err)
	b, _, err := r.Resolve(ctx, 2, models.JobTypeGenerateReport, "key-1", payload)
	require.NoError(t, err)

	assert.NotEqual(t, a.PublicID, b.PublicID)
}

func TestResolver_LostInsertRace(t *testing.T) {
	s := newMemResolverStore()
	r := NewResolver(s)
	ctx := context.Background()
	payload := map[string]any{"month": "2026-03"}

	hash, err := RequestHash(payload)
	require.NoError(t, err)

	winner := &models.Job{
		ID: 99, UserID: 1, IdempotencyKey: "key-1", RequestHash: hash,
		State: models.JobStateQueued,
	}
	s.raceWinner = winner

	got, created, err := r.Resolve(ctx, 1, models.JobTypeGenerateReport, "key-1", payload)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, got.ID)
}
