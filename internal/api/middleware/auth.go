package middleware

import (
	"net/http"
	"strings"

	"github.com/flyswatter/flyswatter/internal/api/response"
	"github.com/flyswatter/flyswatter/internal/auth"
	"github.com/flyswatter/flyswatter/internal/store"
)

// Auth provides JWT authentication and admin-checking middleware.
type Auth struct {
	store  store.Store
	issuer *auth.TokenIssuer
}

// NewAuth creates a new Auth middleware.
func NewAuth(s store.Store, issuer *auth.TokenIssuer) *Auth {
	return &Auth{store: s, issuer: issuer}
}

// Authenticate validates the Bearer access token, loads the user, and sets it
// in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r)
		if raw == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		userID, err := a.issuer.VerifyAccess(raw)
		if err != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid or expired access token", nil)
			return
		}

		user, err := a.store.GetUserByPublicID(r.Context(), userID)
		if err != nil {
			// A valid token for a deleted user is still unauthorized.
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Unknown user", nil)
			return
		}
		if user.Disabled {
			response.Error(w, http.StatusForbidden,
				"ACCOUNT_DISABLED", "This account is disabled", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetUser(r.Context(), user)))
	})
}

// RequireAdmin rejects requests from non-admin users. Must run after
// Authenticate.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r)
		if !ok || !user.Admin {
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Insufficient permissions", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
