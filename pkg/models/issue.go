package models

import (
	"time"

	"github.com/google/uuid"
)

// IssueStatus values mirror the board columns.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "low"
	IssuePriorityMedium IssuePriority = "medium"
	IssuePriorityHigh   IssuePriority = "high"
	IssuePriorityUrgent IssuePriority = "urgent"
)

// ValidIssueStatus reports whether s is one of the known statuses.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}
	return false
}

// ValidIssuePriority reports whether p is one of the known priorities.
func ValidIssuePriority(p IssuePriority) bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityUrgent:
		return true
	}
	return false
}

// Issue is one tracked issue. Key is the per-project numeric part of the
// human key ("2" in "NIM-2"); it is assigned by the store at creation time.
type Issue struct {
	ID          int64         `db:"id"          json:"-"`
	PublicID    uuid.UUID     `db:"public_id"   json:"id"`
	Title       string        `db:"title"       json:"title"`
	Key         string        `db:"key"         json:"key"`
	Description string        `db:"description" json:"description"`
	Status      IssueStatus   `db:"status"      json:"status"`
	Priority    IssuePriority `db:"priority"    json:"priority"`
	ProjectID   int64         `db:"project_id"  json:"-"`
	AuthorID    int64         `db:"author_id"   json:"-"`
	AssigneeID  int64         `db:"assign_id"   json:"-"`
	CreatedAt   time.Time     `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"  json:"updated_at"`

	// Joined fields, populated by store list/get queries.
	ProjectKey       string `db:"-" json:"-"`
	AuthorUsername   string `db:"-" json:"-"`
	AssigneeUsername string `db:"-" json:"-"`
}

// HumanKey returns the caller-facing issue key, e.g. "NIM-2".
func (i *Issue) HumanKey() string {
	return i.ProjectKey + "-" + i.Key
}
