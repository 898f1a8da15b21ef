package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	mw "github.com/flyswatter/flyswatter/internal/api/middleware"
	"github.com/flyswatter/flyswatter/internal/api/response"
	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

// IssueHandler serves the issue CRUD endpoints. Access follows the owning
// project: only the project's author (or an admin) may touch its issues.
type IssueHandler struct {
	store store.Store
}

func NewIssueHandler(s store.Store) *IssueHandler {
	return &IssueHandler{store: s}
}

type issueResponse struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Author      string    `json:"author"`
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toIssueResponse(i *models.Issue) issueResponse {
	return issueResponse{
		ID:          i.PublicID,
		Key:         i.HumanKey(),
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		Priority:    string(i.Priority),
		Author:      i.AuthorUsername,
		Assignee:    i.AssigneeUsername,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// Create handles POST /api/v1/projects/{projectID}/issues.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Assignee    string `json:"assignee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	if req.Title == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "title is required", nil)
		return
	}
	if req.Priority == "" {
		req.Priority = string(models.IssuePriorityMedium)
	}
	if !models.ValidIssuePriority(models.IssuePriority(req.Priority)) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "priority must be one of low, medium, high, urgent", nil)
		return
	}

	// Unassigned issues default to the author.
	assignee := user
	if req.Assignee != "" && req.Assignee != user.Username {
		var err error
		assignee, err = h.store.GetUserByUsername(r.Context(), req.Assignee)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "assignee does not exist", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create issue", nil)
			return
		}
	}

	issue := &models.Issue{
		PublicID:         uuid.New(),
		Title:            req.Title,
		Description:      req.Description,
		Status:           models.IssueStatusOpen,
		Priority:         models.IssuePriority(req.Priority),
		ProjectID:        project.ID,
		AuthorID:         user.ID,
		AssigneeID:       assignee.ID,
		CreatedAt:        time.Now().UTC(),
		ProjectKey:       project.Key,
		AuthorUsername:   user.Username,
		AssigneeUsername: assignee.Username,
	}
	if err := h.store.CreateIssue(r.Context(), issue); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create issue", nil)
		return
	}

	response.Created(w, toIssueResponse(issue))
}

// List handles GET /api/v1/projects/{projectID}/issues.
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	_, project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	issues, err := h.store.ListIssuesByProject(r.Context(), project.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list issues", nil)
		return
	}

	out := make([]issueResponse, 0, len(issues))
	for _, i := range issues {
		out = append(out, toIssueResponse(i))
	}
	response.JSON(w, out)
}

// Get handles GET /api/v1/issues/{issueID}.
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	issue, ok := h.loadIssue(w, r)
	if !ok {
		return
	}
	response.JSON(w, toIssueResponse(issue))
}

// Update handles PATCH /api/v1/issues/{issueID}.
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	issue, ok := h.loadIssue(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
		Assignee    *string `json:"assignee"`
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
		issue.Title = *req.Title
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidIssueStatus(models.IssueStatus(*req.Status)) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "status must be one of open, in_progress, resolved, closed", nil)
			return
		}
		issue.Status = models.IssueStatus(*req.Status)
	}
	if req.Priority != nil {
		if !models.ValidIssuePriority(models.IssuePriority(*req.Priority)) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "priority must be one of low, medium, high, urgent", nil)
			return
		}
		issue.Priority = models.IssuePriority(*req.Priority)
	}
	if req.Assignee != nil {
		assignee, err := h.store.GetUserByUsername(r.Context(), *req.Assignee)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "assignee does not exist", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update issue", nil)
			return
		}
		issue.AssigneeID = assignee.ID
		issue.AssigneeUsername = assignee.Username
	}

	if err := h.store.UpdateIssue(r.Context(), issue); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update issue", nil)
		return
	}
	issue.UpdatedAt = time.Now().UTC()
	response.JSON(w, toIssueResponse(issue))
}

// Delete handles DELETE /api/v1/issues/{issueID}.
func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	issue, ok := h.loadIssue(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteIssue(r.Context(), issue.ID); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete issue", nil)
		return
	}
	response.NoContent(w)
}

func (h *IssueHandler) loadProject(w http.ResponseWriter, r *http.Request) (*models.User, *models.Project, bool) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return nil, nil, false
	}

	projectID, ok := parseUUIDParam(w, r, "projectID")
	if !ok {
		return nil, nil, false
	}

	project, err := h.store.GetProjectByPublicID(r.Context(), projectID)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		return nil, nil, false
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load project", nil)
		return nil, nil, false
	}
	if project.UserID != user.ID && !user.Admin {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		return nil, nil, false
	}
	return user, project, true
}

// loadIssue loads the issue from the URL and checks the current user may
// access it through the owning project.
func (h *IssueHandler) loadIssue(w http.ResponseWriter, r *http.Request) (*models.Issue, bool) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return nil, false
	}

	issueID, ok := parseUUIDParam(w, r, "issueID")
	if !ok {
		return nil, false
	}

	issue, err := h.store.GetIssueByPublicID(r.Context(), issueID)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Issue not found", nil)
		return nil, false
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load issue", nil)
		return nil, false
	}

	// Access: the project's author, the assignee, or an admin.
	owning, err := h.store.ListProjectsByAuthor(r.Context(), user.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load issue", nil)
		return nil, false
	}
	if !user.Admin {
		allowed := false
		for _, p := range owning {
			if p.ID == issue.ProjectID {
				allowed = true
				break
			}
		}
		if !allowed && issue.AssigneeID != user.ID {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Issue not found", nil)
			return nil, false
		}
	}
	return issue, true
}
