// Package report computes the monthly per-user report that the worker renders
// to PDF. Counts are evaluated against the wall clock at generation time.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flyswatter/flyswatter/internal/store"
	"github.com/flyswatter/flyswatter/pkg/models"
)

// ErrUserNotFound is returned when the report target does not exist. It is a
// permanent condition: the executor must not retry it.
var ErrUserNotFound = errors.New("report user not found")

// IssueEntry is one open issue inside an assignee group.
type IssueEntry struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// AssigneeGroup holds one assignee's open issues.
type AssigneeGroup struct {
	Username string       `json:"username"`
	Issues   []IssueEntry `json:"issues"`
}

// ProjectReport aggregates one project's issue counts for the current month.
type ProjectReport struct {
	Title              string          `json:"title"`
	Key                string          `json:"key"`
	OpenIssues         int             `json:"open_issues"`
	CreatedIssuesMonth int             `json:"created_issues_month"`
	ClosedIssuesMonth  int             `json:"closed_issues_month"`
	UserIssues         []AssigneeGroup `json:"user_issues"`
}

// MonthlyReport is the full document handed to the renderer.
type MonthlyReport struct {
	Title       string          `json:"title"`
	Username    string          `json:"username"`
	GeneratedAt time.Time       `json:"generated_at"`
	Projects    []ProjectReport `json:"projects"`
}

// GeneratorStore is the slice of the store the generator reads from.
type GeneratorStore interface {
	GetUserByPublicID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListProjectsByAuthor(ctx context.Context, authorID int64) ([]*models.Project, error)
	ListIssuesByProject(ctx context.Context, projectID int64) ([]*models.Issue, error)
}

// Generator builds monthly reports. The clock is injectable so tests can pin
// the month boundary.
type Generator struct {
	store GeneratorStore
	now   func() time.Time
}

func NewGenerator(s GeneratorStore) *Generator {
	return &Generator{store: s, now: time.Now}
}

// Generate builds the monthly report for the user with the given public ID.
// A user with no projects yields an empty project list, not an error.
func (g *Generator) Generate(ctx context.Context, userID uuid.UUID) (*MonthlyReport, error) {
	user, err := g.store.GetUserByPublicID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report user: %w", err)
	}

	now := g.now()
	rep := &MonthlyReport{
		Title:       fmt.Sprintf("FLYSWATTER MONTHLY REPORT - %s - %s", user.Username, now.Format("2006-01")),
		Username:    user.Username,
		GeneratedAt: now,
		Projects:    []ProjectReport{},
	}

	projects, err := g.store.ListProjectsByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list projects for report: %w", err)
	}

	for _, project := range projects {
		issues, err := g.store.ListIssuesByProject(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("list issues for project %s: %w", project.Key, err)
		}
		rep.Projects = append(rep.Projects, aggregateProject(project, issues, now))
	}

	return rep, nil
}

// aggregateProject computes one project's counts and assignee groups. Groups
// appear in the order their assignee is first seen while walking the issue
// list, and issues keep their list order within a group.
func aggregateProject(project *models.Project, issues []*models.Issue, now time.Time) ProjectReport {
	pr := ProjectReport{
		Title:      project.Title,
		Key:        project.Key,
		UserIssues: []AssigneeGroup{},
	}

	groupIndex := make(map[string]int)
	for _, issue := range issues {
		if issue.Status == models.IssueStatusOpen {
			pr.OpenIssues++

			idx, ok := groupIndex[issue.AssigneeUsername]
			if !ok {
				idx = len(pr.UserIssues)
				groupIndex[issue.AssigneeUsername] = idx
				pr.UserIssues = append(pr.UserIssues, AssigneeGroup{Username: issue.AssigneeUsername})
			}
			pr.UserIssues[idx].Issues = append(pr.UserIssues[idx].Issues, IssueEntry{
				Key:         issue.HumanKey(),
				Title:       issue.Title,
				Description: issue.Description,
				Author:      issue.AuthorUsername,
				Priority:    string(issue.Priority),
				Status:      string(issue.Status),
			})
		}

		if sameMonth(issue.CreatedAt, now) {
			pr.CreatedIssuesMonth++
		}
		if issue.Status == models.IssueStatusClosed && sameMonth(issue.UpdatedAt, now) {
			pr.ClosedIssuesMonth++
		}
	}

	return pr
}

func sameMonth(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}
