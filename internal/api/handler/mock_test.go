package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

// mockStore implements store.Store with overridable function fields. Methods
// without an override return ErrNotFound (reads) or nil (writes).
type mockStore struct {
	createUserFn            func(ctx context.Context, user *models.User) error
	getUserByUsernameFn     func(ctx context.Context, username string) (*models.User, error)
	getUserByPublicIDFn     func(ctx context.Context, id uuid.UUID) (*models.User, error)
	listUsersFn             func(ctx context.Context) ([]*models.User, error)
	updateUserFn            func(ctx context.Context, user *models.User) error
	deleteUserFn            func(ctx context.Context, id int64) error
	createRefreshTokenFn    func(ctx context.Context, token *models.RefreshToken) error
	getRefreshTokenFn       func(ctx context.Context, jti string) (*models.RefreshToken, error)
	revokeRefreshTokenFn    func(ctx context.Context, jti string) error
	createProjectFn         func(ctx context.Context, project *models.Project) error
	getProjectByKeyFn       func(ctx context.Context, authorID int64, key string) (*models.Project, error)
	getProjectByPublicIDFn  func(ctx context.Context, id uuid.UUID) (*models.Project, error)
	listProjectsByAuthorFn  func(ctx context.Context, authorID int64) ([]*models.Project, error)
	createIssueFn           func(ctx context.Context, issue *models.Issue) error
	getIssueByPublicIDFn    func(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	listIssuesByProjectFn   func(ctx context.Context, projectID int64) ([]*models.Issue, error)
	getJobByPublicIDFn      func(ctx context.Context, id uuid.UUID) (*models.Job, error)
	getJobByIDFn            func(ctx context.Context, id int64) (*models.Job, error)
	listJobsByUserFn        func(ctx context.Context, userID int64) ([]*models.Job, error)
	listFailedJobsByUserFn  func(ctx context.Context, userID int64) ([]*models.Job, error)
	getArtifactByPublicIDFn func(ctx context.Context, id uuid.UUID) (*models.Artifact, error)
	getArtifactByIDFn       func(ctx context.Context, id int64) (*models.Artifact, error)
	listArtifactsFn         func(ctx context.Context) ([]*models.Artifact, error)
}

func (m *mockStore) Ping(context.Context) error { return nil }

func (m *mockStore) CreateUser(ctx context.Context, user *models.User) error {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, user)
	}
	return nil
}

func (m *mockStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getUserByUsernameFn != nil {
		return m.getUserByUsernameFn(ctx, username)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) GetUserByPublicID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.getUserByPublicIDFn != nil {
		return m.getUserByPublicIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return nil, nil
}

func (m *mockStore) UpdateUser(ctx context.Context, user *models.User) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, user)
	}
	return nil
}

func (m *mockStore) DeleteUser(ctx context.Context, id int64) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, id)
	}
	return nil
}

func (m *mockStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshTokenFn != nil {
		return m.createRefreshTokenFn(ctx, token)
	}
	return nil
}

func (m *mockStore) GetRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error) {
	if m.getRefreshTokenFn != nil {
		return m.getRefreshTokenFn(ctx, jti)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) RevokeRefreshToken(ctx context.Context, jti string) error {
	if m.revokeRefreshTokenFn != nil {
		return m.revokeRefreshTokenFn(ctx, jti)
	}
	return nil
}

func (m *mockStore) CreateProject(ctx context.Context, project *models.Project) error {
	if m.createProjectFn != nil {
		return m.createProjectFn(ctx, project)
	}
	return nil
}

func (m *mockStore) GetProjectByKey(ctx context.Context, authorID int64, key string) (*models.Project, error) {
	if m.getProjectByKeyFn != nil {
		return m.getProjectByKeyFn(ctx, authorID, key)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetProjectByPublicID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.getProjectByPublicIDFn != nil {
		return m.getProjectByPublicIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListProjectsByAuthor(ctx context.Context, authorID int64) ([]*models.Project, error) {
	if m.listProjectsByAuthorFn != nil {
		return m.listProjectsByAuthorFn(ctx, authorID)
	}
	return nil, nil
}

func (m *mockStore) UpdateProject(context.Context, *models.Project) error { return nil }

func (m *mockStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if m.createIssueFn != nil {
		return m.createIssueFn(ctx, issue)
	}
	return nil
}

func (m *mockStore) GetIssueByPublicID(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	if m.getIssueByPublicIDFn != nil {
		return m.getIssueByPublicIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListIssuesByProject(ctx context.Context, projectID int64) ([]*models.Issue, error) {
	if m.listIssuesByProjectFn != nil {
		return m.listIssuesByProjectFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockStore) UpdateIssue(context.Context, *models.Issue) error { return nil }
func (m *mockStore) DeleteIssue(context.Context, int64) error         { return nil }

func (m *mockStore) CreateComment(context.Context, *models.Comment) error { return nil }
func (m *mockStore) GetCommentByPublicID(context.Context, uuid.UUID) (*models.Comment, error) {
	return nil, store.ErrNotFound
}
func (m *mockStore) ListCommentsByIssue(context.Context, int64) ([]*models.Comment, error) {
	return nil, nil
}
func (m *mockStore) UpdateComment(context.Context, *models.Comment) error { return nil }
func (m *mockStore) DeleteComment(context.Context, int64) error           { return nil }

func (m *mockStore) CreateJob(context.Context, *models.Job) error { return nil }

func (m *mockStore) GetJobByPublicID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	if m.getJobByPublicIDFn != nil {
		return m.getJobByPublicIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	if m.getJobByIDFn != nil {
		return m.getJobByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) FindJobByRequest(context.Context, int64, string, string) (*models.Job, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) ListJobsByUser(ctx context.Context, userID int64) ([]*models.Job, error) {
	if m.listJobsByUserFn != nil {
		return m.listJobsByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockStore) ListFailedJobsByUser(ctx context.Context, userID int64) ([]*models.Job, error) {
	if m.listFailedJobsByUserFn != nil {
		return m.listFailedJobsByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockStore) MarkJobRunning(context.Context, *models.Job) error { return nil }
func (m *mockStore) MarkJobFailed(context.Context, *models.Job, models.JobErrorKind, string, []byte) error {
	return nil
}
func (m *mockStore) MarkJobSucceeded(context.Context, *models.Job, *models.Artifact) error {
	return nil
}
func (m *mockStore) FinishJob(context.Context, *models.Job) error { return nil }

func (m *mockStore) GetArtifactByPublicID(ctx context.Context, id uuid.UUID) (*models.Artifact, error) {
	if m.getArtifactByPublicIDFn != nil {
		return m.getArtifactByPublicIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetArtifactByID(ctx context.Context, id int64) (*models.Artifact, error) {
	if m.getArtifactByIDFn != nil {
		return m.getArtifactByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListArtifacts(ctx context.Context) ([]*models.Artifact, error) {
	if m.listArtifactsFn != nil {
		return m.listArtifactsFn(ctx)
	}
	return nil, nil
}
