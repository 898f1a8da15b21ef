package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/flyswatter/flyswatter/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPublicID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, jti string) error

	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectByKey(ctx context.Context, authorID int64, key string) (*models.Project, error)
	GetProjectByPublicID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjectsByAuthor(ctx context.Context, authorID int64) ([]*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error

	CreateIssue(ctx context.Context, issue *models.Issue) error
	GetIssueByPublicID(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	ListIssuesByProject(ctx context.Context, projectID int64) ([]*models.Issue, error)
	UpdateIssue(ctx context.Context, issue *models.Issue) error
	DeleteIssue(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByPublicID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListCommentsByIssue(ctx context.Context, issueID int64) ([]*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id int64) error

	// Job ledger operations. Each one commits before returning so that a
	// crash between executor steps leaves a consistent, resumable record.
	CreateJob(ctx context.Context, job *models.Job) error
	GetJobByPublicID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetJobByID(ctx context.Context, id int64) (*models.Job, error)
	FindJobByRequest(ctx context.Context, userID int64, idempotencyKey, requestHash string) (*models.Job, error)
	ListJobsByUser(ctx context.Context, userID int64) ([]*models.Job, error)
	ListFailedJobsByUser(ctx context.Context, userID int64) ([]*models.Job, error)
	MarkJobRunning(ctx context.Context, job *models.Job) error
	MarkJobFailed(ctx context.Context, job *models.Job, kind models.JobErrorKind, lastError string, payload []byte) error
	MarkJobSucceeded(ctx context.Context, job *models.Job, artifact *models.Artifact) error
	FinishJob(ctx context.Context, job *models.Job) error

	GetArtifactByPublicID(ctx context.Context, id uuid.UUID) (*models.Artifact, error)
	GetArtifactByID(ctx context.Context, id int64) (*models.Artifact, error)
	ListArtifacts(ctx context.Context) ([]*models.Artifact, error)
}
