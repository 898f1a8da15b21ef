package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flyswatter/flyswatter/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

const userColumns = `id, public_id, email, name, username, pass_hash, admin, disabled, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.PublicID, &u.Email, &u.Name, &u.Username,
		&u.PassHash, &u.Admin, &u.Disabled, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (public_id, email, name, username, pass_hash, admin, disabled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		user.PublicID, user.Email, user.Name, user.Username, user.PassHash,
		user.Admin, user.Disabled, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *PostgresStore) GetUserByPublicID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE public_id = $1`, id))
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $2, name = $3, pass_hash = $4, admin = $5, disabled = $6
		 WHERE id = $1`,
		user.ID, user.Email, user.Name, user.PassHash, user.Admin, user.Disabled)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Refresh tokens ---

func (s *PostgresStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO refresh_tokens (public_id, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		token.PublicID, token.UserID, token.ExpiresAt, token.CreatedAt,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := s.pool.QueryRow(ctx,
		`SELECT id, public_id, user_id, expires_at, revoked_at, created_at
		 FROM refresh_tokens WHERE public_id = $1`, jti,
	).Scan(&t.ID, &t.PublicID, &t.UserID, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) RevokeRefreshToken(ctx context.Context, jti string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE public_id = $1 AND revoked_at IS NULL`, jti)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Projects ---

func (s *PostgresStore) CreateProject(ctx context.Context, project *models.Project) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO projects (public_id, title, key, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		project.PublicID, project.Title, project.Key, project.UserID, project.CreatedAt,
	).Scan(&project.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.PublicID, &p.Title, &p.Key, &p.UserID, &p.CreatedAt, &p.AuthorUsername)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}

const projectQuery = `SELECT p.id, p.public_id, p.title, p.key, p.user_id, p.created_at, u.username
	 FROM projects p JOIN users u ON u.id = p.user_id`

func (s *PostgresStore) GetProjectByKey(ctx context.Context, authorID int64, key string) (*models.Project, error) {
	return scanProject(s.pool.QueryRow(ctx,
		projectQuery+` WHERE p.user_id = $1 AND p.key = $2`, authorID, key))
}

func (s *PostgresStore) GetProjectByPublicID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return scanProject(s.pool.QueryRow(ctx,
		projectQuery+` WHERE p.public_id = $1`, id))
}

func (s *PostgresStore) ListProjectsByAuthor(ctx context.Context, authorID int64) ([]*models.Project, error) {
	rows, err := s.pool.Query(ctx,
		projectQuery+` WHERE p.user_id = $1 ORDER BY p.id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *PostgresStore) UpdateProject(ctx context.Context, project *models.Project) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET title = $2, key = $3, user_id = $4 WHERE id = $1`,
		project.ID, project.Title, project.Key, project.UserID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Issues ---

const issueQuery = `SELECT i.id, i.public_id, i.title, i.key, i.description, i.status, i.priority,
	 i.project_id, i.author_id, i.assign_id, i.created_at, i.updated_at,
	 p.key, a.username, g.username
	 FROM issues i
	 JOIN projects p ON p.id = i.project_id
	 JOIN users a ON a.id = i.author_id
	 JOIN users g ON g.id = i.assign_id`

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var i models.Issue
	err := row.Scan(&i.ID, &i.PublicID, &i.Title, &i.Key, &i.Description, &i.Status, &i.Priority,
		&i.ProjectID, &i.AuthorID, &i.AssigneeID, &i.CreatedAt, &i.UpdatedAt,
		&i.ProjectKey, &i.AuthorUsername, &i.AssigneeUsername)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan issue: %w", err)
	}
	return &i, nil
}

// CreateIssue inserts the issue, assigning the next numeric key within its
// project. The key subquery and insert run in one transaction so concurrent
// creates in the same project cannot collide.
func (s *PostgresStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create issue: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO issues (public_id, title, key, description, status, priority,
		   project_id, author_id, assign_id, created_at, updated_at)
		 SELECT $1, $2, COALESCE(MAX(key::int), 0) + 1, $3, $4, $5, $6, $7, $8, $9, $9
		 FROM issues WHERE project_id = $6
		 RETURNING id, key`,
		issue.PublicID, issue.Title, issue.Description, issue.Status, issue.Priority,
		issue.ProjectID, issue.AuthorID, issue.AssigneeID, issue.CreatedAt,
	).Scan(&issue.ID, &issue.Key)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create issue: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create issue: %w", err)
	}
	issue.UpdatedAt = issue.CreatedAt
	return nil
}

func (s *PostgresStore) GetIssueByPublicID(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	return scanIssue(s.pool.QueryRow(ctx, issueQuery+` WHERE i.public_id = $1`, id))
}

func (s *PostgresStore) ListIssuesByProject(ctx context.Context, projectID int64) ([]*models.Issue, error) {
	rows, err := s.pool.Query(ctx, issueQuery+` WHERE i.project_id = $1 ORDER BY i.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func (s *PostgresStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE issues SET title = $2, description = $3, status = $4, priority = $5,
		   project_id = $6, author_id = $7, assign_id = $8, updated_at = NOW()
		 WHERE id = $1`,
		issue.ID, issue.Title, issue.Description, issue.Status, issue.Priority,
		issue.ProjectID, issue.AuthorID, issue.AssigneeID)
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteIssue(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Comments ---

const commentQuery = `SELECT c.id, c.public_id, c.body, c.author_id, c.issue_id,
	 c.created_at, c.updated_at, u.username
	 FROM comments c JOIN users u ON u.id = c.author_id`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PublicID, &c.Body, &c.AuthorID, &c.IssueID,
		&c.CreatedAt, &c.UpdatedAt, &c.AuthorUsername)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO comments (public_id, body, author_id, issue_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		comment.PublicID, comment.Body, comment.AuthorID, comment.IssueID, comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	comment.UpdatedAt = comment.CreatedAt
	return nil
}

func (s *PostgresStore) GetCommentByPublicID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return scanComment(s.pool.QueryRow(ctx, commentQuery+` WHERE c.public_id = $1`, id))
}

func (s *PostgresStore) ListCommentsByIssue(ctx context.Context, issueID int64) ([]*models.Comment, error) {
	rows, err := s.pool.Query(ctx, commentQuery+` WHERE c.issue_id = $1 ORDER BY c.id`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *PostgresStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE comments SET body = $2, updated_at = NOW() WHERE id = $1`,
		comment.ID, comment.Body)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteComment(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Jobs ---

const jobColumns = `id, public_id, user_id, job_type, state, attempts, idempotency_key,
	 request_hash, last_error, error_kind, error_payload, result_kind, artifact_id,
	 started_at, finished_at, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.PublicID, &j.UserID, &j.JobType, &j.State, &j.Attempts,
		&j.IdempotencyKey, &j.RequestHash, &j.LastError, &j.ErrorKind, &j.ErrorPayload,
		&j.ResultKind, &j.ArtifactID, &j.StartedAt, &j.FinishedAt, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (public_id, user_id, job_type, state, attempts,
		   idempotency_key, request_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		job.PublicID, job.UserID, job.JobType, job.State, job.Attempts,
		job.IdempotencyKey, job.RequestHash, job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJobByPublicID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE public_id = $1`, id))
}

func (s *PostgresStore) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	return scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

func (s *PostgresStore) FindJobByRequest(ctx context.Context, userID int64, idempotencyKey, requestHash string) (*models.Job, error) {
	return scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE user_id = $1 AND idempotency_key = $2 AND request_hash = $3`,
		userID, idempotencyKey, requestHash))
}

func (s *PostgresStore) ListJobsByUser(ctx context.Context, userID int64) ([]*models.Job, error) {
	return s.listJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY id DESC`, userID)
}

func (s *PostgresStore) ListFailedJobsByUser(ctx context.Context, userID int64) ([]*models.Job, error) {
	return s.listJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 AND state = 'failed' ORDER BY id DESC`, userID)
}

func (s *PostgresStore) listJobs(ctx context.Context, query string, args ...any) ([]*models.Job, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// MarkJobRunning transitions the job to running, increments attempts and sets
// started_at on the first attempt. The incremented attempt count is read back
// into the job so the executor sees the ground-truth counter.
func (s *PostgresStore) MarkJobRunning(ctx context.Context, job *models.Job) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE jobs SET state = $2, attempts = attempts + 1,
		   started_at = COALESCE(started_at, NOW()), updated_at = NOW()
		 WHERE id = $1
		 RETURNING attempts, started_at, updated_at`,
		job.ID, models.JobStateRunning,
	).Scan(&job.Attempts, &job.StartedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	job.State = models.JobStateRunning
	return nil
}

// MarkJobFailed records the failure outcome. finished_at is deliberately left
// untouched: a transiently failed job that will be retried is failed-but-open.
func (s *PostgresStore) MarkJobFailed(ctx context.Context, job *models.Job, kind models.JobErrorKind, lastError string, payload []byte) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE jobs SET state = $2, last_error = $3, error_kind = $4, error_payload = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		job.ID, models.JobStateFailed, lastError, kind, payload,
	).Scan(&job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	job.State = models.JobStateFailed
	job.LastError = &lastError
	job.ErrorKind = &kind
	job.ErrorPayload = payload
	return nil
}

// MarkJobSucceeded inserts the artifact and links it to the job in a single
// transaction, so a crash can never leave a succeeded job without its
// artifact or an orphaned artifact row.
func (s *PostgresStore) MarkJobSucceeded(ctx context.Context, job *models.Job, artifact *models.Artifact) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin mark job succeeded: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO artifacts (public_id, job_id, url, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		artifact.PublicID, job.ID, artifact.URL, artifact.CreatedAt, artifact.ExpiresAt,
	).Scan(&artifact.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create artifact: %w", err)
	}
	artifact.JobID = job.ID

	err = tx.QueryRow(ctx,
		`UPDATE jobs SET state = $2, result_kind = $3, artifact_id = $4,
		   last_error = NULL, error_kind = NULL, error_payload = NULL, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		job.ID, models.JobStateSucceeded, models.JobResultArtifact, artifact.ID,
	).Scan(&job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mark job succeeded: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit mark job succeeded: %w", err)
	}

	job.State = models.JobStateSucceeded
	kind := models.JobResultArtifact
	job.ResultKind = &kind
	job.ArtifactID = &artifact.ID
	job.LastError = nil
	job.ErrorKind = nil
	job.ErrorPayload = nil
	return nil
}

func (s *PostgresStore) FinishJob(ctx context.Context, job *models.Job) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE jobs SET finished_at = NOW(), updated_at = NOW() WHERE id = $1
		 RETURNING finished_at, updated_at`,
		job.ID,
	).Scan(&job.FinishedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// --- Artifacts ---

func scanArtifact(row pgx.Row) (*models.Artifact, error) {
	var a models.Artifact
	err := row.Scan(&a.ID, &a.PublicID, &a.JobID, &a.URL, &a.CreatedAt, &a.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan artifact: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) GetArtifactByPublicID(ctx context.Context, id uuid.UUID) (*models.Artifact, error) {
	return scanArtifact(s.pool.QueryRow(ctx,
		`SELECT id, public_id, job_id, url, created_at, expires_at
		 FROM artifacts WHERE public_id = $1`, id))
}

func (s *PostgresStore) GetArtifactByID(ctx context.Context, id int64) (*models.Artifact, error) {
	return scanArtifact(s.pool.QueryRow(ctx,
		`SELECT id, public_id, job_id, url, created_at, expires_at
		 FROM artifacts WHERE id = $1`, id))
}

func (s *PostgresStore) ListArtifacts(ctx context.Context) ([]*models.Artifact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, public_id, job_id, url, created_at, expires_at
		 FROM artifacts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*models.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
