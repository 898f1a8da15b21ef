package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyswatter/flyswatter/internal/auth"
	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

// stubStore overrides the single store method the auth middleware uses;
// calling anything else panics via the embedded nil interface.
type stubStore struct {
	store.Store
	user *models.User
}

func (s *stubStore) GetUserByPublicID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.PublicID != id {
		return nil, store.ErrNotFound
	}
	return s.user, nil
}

func okHandler(sawUser **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := GetUser(r); ok {
			*sawUser = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", 15*time.Minute, time.Hour)
	user := &models.User{ID: 1, PublicID: uuid.New(), Username: "nicole"}
	a := NewAuth(&stubStore{user: user}, issuer)

	token, err := issuer.IssueAccess(user.PublicID, time.Now())
	require.NoError(t, err)

	var sawUser *models.User
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.Authenticate(okHandler(&sawUser)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sawUser)
	assert.Equal(t, "nicole", sawUser.Username)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", 15*time.Minute, time.Hour)
	a := NewAuth(&stubStore{}, issuer)

	var sawUser *models.User
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	a.Authenticate(okHandler(&sawUser)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sawUser)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", 15*time.Minute, time.Hour)
	a := NewAuth(&stubStore{}, issuer)

	var sawUser *models.User
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	a.Authenticate(okHandler(&sawUser)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_DisabledUser(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", 15*time.Minute, time.Hour)
	user := &models.User{ID: 1, PublicID: uuid.New(), Disabled: true}
	a := NewAuth(&stubStore{user: user}, issuer)

	token, err := issuer.IssueAccess(user.PublicID, time.Now())
	require.NoError(t, err)

	var sawUser *models.User
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.Authenticate(okHandler(&sawUser)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	a := NewAuth(&stubStore{}, nil)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(SetUser(r.Context(), &models.User{Admin: false}))
	w := httptest.NewRecorder()
	a.RequireAdmin(next).ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(SetUser(r.Context(), &models.User{Admin: true}))
	w = httptest.NewRecorder()
	a.RequireAdmin(next).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	Recovery(panicky).ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
