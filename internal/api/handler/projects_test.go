package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

func TestCreateProject_UppercasesKey(t *testing.T) {
	var created *models.Project
	s := &mockStore{
		createProjectFn: func(_ context.Context, p *models.Project) error {
			created = p
			return nil
		},
	}
	h := NewProjectHandler(s)

	r := authedRequest(http.MethodPost, "/api/v1/projects",
		`{"title":"Nimbus","key":"nim"}`, testUser())
	w := httptest.NewRecorder()
	h.Create(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, created)
	assert.Equal(t, "NIM", created.Key)
}

func TestCreateProject_DuplicateKey(t *testing.T) {
	s := &mockStore{
		createProjectFn: func(context.Context, *models.Project) error {
			return store.ErrDuplicateKey
		},
	}
	h := NewProjectHandler(s)

	r := authedRequest(http.MethodPost, "/api/v1/projects",
		`{"title":"Nimbus","key":"NIM"}`, testUser())
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_EXISTS")
}

func TestGetProject_OtherUsersProjectIsHidden(t *testing.T) {
	project := &models.Project{PublicID: uuid.New(), UserID: 99, Key: "NIM"}
	s := &mockStore{
		getProjectByPublicIDFn: func(context.Context, uuid.UUID) (*models.Project, error) {
			return project, nil
		},
	}
	h := NewProjectHandler(s)

	r := authedRequest(http.MethodGet, "/api/v1/projects/"+project.PublicID.String(), "", testUser())
	r = routedRequest(r, map[string]string{"projectID": project.PublicID.String()})
	w := httptest.NewRecorder()
	h.Get(w, r)

	// Not 403: existence of another user's project is not leaked.
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProjectByKey(t *testing.T) {
	user := testUser()
	project := &models.Project{
		PublicID: uuid.New(), UserID: user.ID, Key: "NIM", Title: "Nimbus",
	}
	s := &mockStore{
		getProjectByKeyFn: func(_ context.Context, authorID int64, key string) (*models.Project, error) {
			if authorID == user.ID && key == "NIM" {
				return project, nil
			}
			return nil, store.ErrNotFound
		},
	}
	h := NewProjectHandler(s)

	// Lowercase in the URL still resolves; keys are stored uppercased.
	r := authedRequest(http.MethodGet, "/api/v1/projects/key/nim", "", user)
	r = routedRequest(r, map[string]string{"projectKey": "nim"})
	w := httptest.NewRecorder()
	h.GetByKey(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data projectResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, project.PublicID, resp.Data.ID)
	assert.Equal(t, "NIM", resp.Data.Key)
}

func TestGetProjectByKey_UnknownKey(t *testing.T) {
	h := NewProjectHandler(&mockStore{})

	r := authedRequest(http.MethodGet, "/api/v1/projects/key/ZEP", "", testUser())
	r = routedRequest(r, map[string]string{"projectKey": "ZEP"})
	w := httptest.NewRecorder()
	h.GetByKey(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
