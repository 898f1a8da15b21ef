package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_AccessRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	raw, err := issuer.IssueAccess(userID, time.Now())
	require.NoError(t, err)

	got, err := issuer.VerifyAccess(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenIssuer_RefreshRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	raw, jti, err := issuer.IssueRefresh(userID, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	gotID, gotJTI, err := issuer.VerifyRefresh(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, jti, gotJTI)
}

func TestTokenIssuer_RejectsWrongType(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	access, err := issuer.IssueAccess(userID, time.Now())
	require.NoError(t, err)

	_, _, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, _, err := issuer.IssueRefresh(userID, time.Now())
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 24*time.Hour)

	raw, err := issuer.IssueAccess(uuid.New(), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 24*time.Hour)
	other := NewTokenIssuer("other-secret", 15*time.Minute, 24*time.Hour)

	raw, err := issuer.IssueAccess(uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = other.VerifyAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
