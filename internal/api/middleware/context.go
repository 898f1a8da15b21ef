package middleware

import (
	"context"
	"net/http"

	"github.com/flyswatter/flyswatter/pkg/models"
)

type contextKey string

const userKey contextKey = "user"

// SetUser stores the authenticated user in the context.
func SetUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated user set by the auth middleware.
func GetUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(userKey).(*models.User)
	return u, ok
}
