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

// CommentHandler serves the comment endpoints. Anyone who can see the issue
// can comment; only a comment's author (or an admin) may edit or delete it.
type CommentHandler struct {
	store  store.Store
	issues *IssueHandler
}

func NewCommentHandler(s store.Store) *CommentHandler {
	return &CommentHandler{store: s, issues: NewIssueHandler(s)}
}

type commentResponse struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCommentResponse(c *models.Comment) commentResponse {
	return commentResponse{
		ID:        c.PublicID,
		Body:      c.Body,
		Author:    c.AuthorUsername,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Create handles POST /api/v1/issues/{issueID}/comments.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	issue, ok := h.issues.loadIssue(w, r)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.Body == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "body is required", nil)
		return
	}

	comment := &models.Comment{
		PublicID:       uuid.New(),
		Body:           req.Body,
		AuthorID:       user.ID,
		IssueID:        issue.ID,
		CreatedAt:      time.Now().UTC(),
		AuthorUsername: user.Username,
	}
	if err := h.store.CreateComment(r.Context(), comment); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create comment", nil)
		return
	}

	response.Created(w, toCommentResponse(comment))
}

// List handles GET /api/v1/issues/{issueID}/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	issue, ok := h.issues.loadIssue(w, r)
	if !ok {
		return
	}

	comments, err := h.store.ListCommentsByIssue(r.Context(), issue.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list comments", nil)
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	response.JSON(w, out)
}

// Update handles PATCH /api/v1/comments/{commentID}.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.Body == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "body is required", nil)
		return
	}

	comment.Body = req.Body
	if err := h.store.UpdateComment(r.Context(), comment); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update comment", nil)
		return
	}
	comment.UpdatedAt = time.Now().UTC()
	response.JSON(w, toCommentResponse(comment))
}

// Delete handles DELETE /api/v1/comments/{commentID}.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteComment(r.Context(), comment.ID); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete comment", nil)
		return
	}
	response.NoContent(w)
}

func (h *CommentHandler) loadOwnComment(w http.ResponseWriter, r *http.Request) (*models.Comment, bool) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return nil, false
	}

	commentID, ok := parseUUIDParam(w, r, "commentID")
	if !ok {
		return nil, false
	}

	comment, err := h.store.GetCommentByPublicID(r.Context(), commentID)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Comment not found", nil)
		return nil, false
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load comment", nil)
		return nil, false
	}
	if comment.AuthorID != user.ID && !user.Admin {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Only the comment author may modify it", nil)
		return nil, false
	}
	return comment, true
}
