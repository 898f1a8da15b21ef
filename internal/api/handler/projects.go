package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/flyswatter/flyswatter/internal/api/middleware"
	"github.com/flyswatter/flyswatter/internal/api/response"
	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

const maxProjectKeyLen = 10

// ProjectHandler serves the project CRUD endpoints. Projects are scoped to
// their author: other users get a 404, not a 403, so project existence is not
// leaked.
type ProjectHandler struct {
	store store.Store
}

func NewProjectHandler(s store.Store) *ProjectHandler {
	return &ProjectHandler{store: s}
}

type projectResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Key       string    `json:"key"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func toProjectResponse(p *models.Project) projectResponse {
	return projectResponse{
		ID:        p.PublicID,
		Title:     p.Title,
		Key:       p.Key,
		Author:    p.AuthorUsername,
		CreatedAt: p.CreatedAt,
	}
}

// Create handles POST /api/v1/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	var req struct {
		Title string `json:"title"`
		Key   string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	if req.Title == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "title is required", nil)
		return
	}
	req.Key = strings.ToUpper(strings.TrimSpace(req.Key))
	if req.Key == "" || len(req.Key) > maxProjectKeyLen {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "key is required and must be at most 10 characters", nil)
		return
	}

	project := &models.Project{
		PublicID:       uuid.New(),
		Title:          req.Title,
		Key:            req.Key,
		UserID:         user.ID,
		CreatedAt:      time.Now().UTC(),
		AuthorUsername: user.Username,
	}
	if err := h.store.CreateProject(r.Context(), project); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			response.Error(w, http.StatusConflict, "ALREADY_EXISTS", "A project with this key already exists", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create project", nil)
		return
	}

	response.Created(w, toProjectResponse(project))
}

// List handles GET /api/v1/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	projects, err := h.store.ListProjectsByAuthor(r.Context(), user.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list projects", nil)
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	response.JSON(w, out)
}

// Get handles GET /api/v1/projects/{projectID}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	response.JSON(w, toProjectResponse(project))
}

// GetByKey handles GET /api/v1/projects/key/{projectKey}. Keys are unique per
// author, so the lookup is always scoped to the current user's projects.
func (h *ProjectHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	key := strings.ToUpper(chi.URLParam(r, "projectKey"))
	project, err := h.store.GetProjectByKey(r.Context(), user.ID, key)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load project", nil)
		return
	}
	response.JSON(w, toProjectResponse(project))
}

// Update handles PATCH /api/v1/projects/{projectID}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req struct {
		Title *string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "title must not be empty", nil)
			return
		}
		project.Title = *req.Title
	}

	if err := h.store.UpdateProject(r.Context(), project); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update project", nil)
		return
	}
	response.JSON(w, toProjectResponse(project))
}

// loadOwned loads the project from the URL and checks it belongs to the
// current user.
func (h *ProjectHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return nil, false
	}

	projectID, ok := parseUUIDParam(w, r, "projectID")
	if !ok {
		return nil, false
	}

	project, err := h.store.GetProjectByPublicID(r.Context(), projectID)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		return nil, false
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load project", nil)
		return nil, false
	}
	if project.UserID != user.ID && !user.Admin {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		return nil, false
	}
	return project, true
}
