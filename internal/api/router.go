package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/flyswatter/flyswatter/internal/api/middleware"
	"github.com/flyswatter/flyswatter/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	RegisterHandler http.HandlerFunc
	TokenHandler    http.HandlerFunc
	RefreshHandler  http.HandlerFunc
	LogoutHandler   http.HandlerFunc

	CurrentUserHandler http.HandlerFunc
	ListUsersHandler   http.HandlerFunc
	GetUserHandler     http.HandlerFunc
	UpdateUserHandler  http.HandlerFunc
	DeleteUserHandler  http.HandlerFunc

	CreateProject   http.HandlerFunc
	ListProjects    http.HandlerFunc
	GetProject      http.HandlerFunc
	GetProjectByKey http.HandlerFunc
	UpdateProject   http.HandlerFunc

	CreateIssue http.HandlerFunc
	ListIssues  http.HandlerFunc
	GetIssue    http.HandlerFunc
	UpdateIssue http.HandlerFunc
	DeleteIssue http.HandlerFunc

	CreateComment http.HandlerFunc
	ListComments  http.HandlerFunc
	UpdateComment http.HandlerFunc
	DeleteComment http.HandlerFunc

	SubmitReport   http.HandlerFunc
	GetJob         http.HandlerFunc
	ListJobs       http.HandlerFunc
	ListFailedJobs http.HandlerFunc
	GetArtifact    http.HandlerFunc
	ListArtifacts  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Post("/api/v1/users", orNotImplemented(deps.RegisterHandler))
	r.Post("/api/v1/auth/token", orNotImplemented(deps.TokenHandler))
	r.Post("/api/v1/auth/refresh", orNotImplemented(deps.RefreshHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/auth/logout", orNotImplemented(deps.LogoutHandler))
		r.Get("/api/v1/users/me", orNotImplemented(deps.CurrentUserHandler))

		r.Post("/api/v1/projects", orNotImplemented(deps.CreateProject))
		r.Get("/api/v1/projects", orNotImplemented(deps.ListProjects))
		r.Get("/api/v1/projects/key/{projectKey}", orNotImplemented(deps.GetProjectByKey))
		r.Get("/api/v1/projects/{projectID}", orNotImplemented(deps.GetProject))
		r.Patch("/api/v1/projects/{projectID}", orNotImplemented(deps.UpdateProject))

		r.Post("/api/v1/projects/{projectID}/issues", orNotImplemented(deps.CreateIssue))
		r.Get("/api/v1/projects/{projectID}/issues", orNotImplemented(deps.ListIssues))
		r.Get("/api/v1/issues/{issueID}", orNotImplemented(deps.GetIssue))
		r.Patch("/api/v1/issues/{issueID}", orNotImplemented(deps.UpdateIssue))
		r.Delete("/api/v1/issues/{issueID}", orNotImplemented(deps.DeleteIssue))

		r.Post("/api/v1/issues/{issueID}/comments", orNotImplemented(deps.CreateComment))
		r.Get("/api/v1/issues/{issueID}/comments", orNotImplemented(deps.ListComments))
		r.Patch("/api/v1/comments/{commentID}", orNotImplemented(deps.UpdateComment))
		r.Delete("/api/v1/comments/{commentID}", orNotImplemented(deps.DeleteComment))

		r.Post("/api/v1/reports", orNotImplemented(deps.SubmitReport))
		r.Get("/api/v1/jobs", orNotImplemented(deps.ListJobs))
		r.Get("/api/v1/jobs/failed", orNotImplemented(deps.ListFailedJobs))
		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJob))
		r.Get("/api/v1/artifacts/{artifactID}", orNotImplemented(deps.GetArtifact))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireAdmin)

			r.Get("/api/v1/users", orNotImplemented(deps.ListUsersHandler))
			r.Get("/api/v1/users/{userID}", orNotImplemented(deps.GetUserHandler))
			r.Patch("/api/v1/users/{userID}", orNotImplemented(deps.UpdateUserHandler))
			r.Delete("/api/v1/users/{userID}", orNotImplemented(deps.DeleteUserHandler))
			r.Get("/api/v1/artifacts", orNotImplemented(deps.ListArtifacts))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
