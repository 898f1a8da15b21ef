package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/flyswatter/flyswatter/internal/api/response"
	"github.com/flyswatter/flyswatter/internal/auth"
	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

// AuthHandler serves the token endpoints. Refresh tokens rotate: every use
// revokes the presented token and issues a fresh one.
type AuthHandler struct {
	store      store.Store
	issuer     *auth.TokenIssuer
	refreshTTL time.Duration
}

func NewAuthHandler(s store.Store, issuer *auth.TokenIssuer, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{store: s, issuer: issuer, refreshTTL: refreshTTL}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Token handles POST /api/v1/auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.Username == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "username and password are required", nil)
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) {
		// Same response as a bad password so usernames cannot be probed.
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to authenticate", nil)
		return
	}
	if !auth.VerifyPassword(user.PassHash, req.Password) {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}
	if user.Disabled {
		response.Error(w, http.StatusForbidden, "ACCOUNT_DISABLED", "This account is disabled", nil)
		return
	}

	h.issueTokens(w, r, user)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	userID, jti, err := h.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired refresh token", nil)
		return
	}

	stored, err := h.store.GetRefreshToken(r.Context(), jti)
	if err != nil || stored.RevokedAt != nil || time.Now().After(stored.ExpiresAt) {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Refresh token revoked or expired", nil)
		return
	}

	user, err := h.store.GetUserByPublicID(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown user", nil)
		return
	}
	if user.Disabled {
		response.Error(w, http.StatusForbidden, "ACCOUNT_DISABLED", "This account is disabled", nil)
		return
	}

	// Rotation: the presented token is spent either way.
	if err := h.store.RevokeRefreshToken(r.Context(), jti); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to rotate token", nil)
		return
	}

	h.issueTokens(w, r, user)
}

// Logout handles POST /api/v1/auth/logout; it revokes the presented refresh
// token. The access token simply expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	_, jti, err := h.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid refresh token", nil)
		return
	}

	if err := h.store.RevokeRefreshToken(r.Context(), jti); err != nil && !errors.Is(err, store.ErrNotFound) {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke token", nil)
		return
	}
	response.NoContent(w)
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, user *models.User) {
	now := time.Now().UTC()

	access, err := h.issuer.IssueAccess(user.PublicID, now)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", nil)
		return
	}
	refresh, jti, err := h.issuer.IssueRefresh(user.PublicID, now)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", nil)
		return
	}

	record := &models.RefreshToken{
		PublicID:  jti,
		UserID:    user.ID,
		ExpiresAt: now.Add(h.refreshTTL),
		CreatedAt: now,
	}
	if err := h.store.CreateRefreshToken(r.Context(), record); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", nil)
		return
	}

	response.JSON(w, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}
