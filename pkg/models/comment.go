package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        int64     `db:"id"         json:"-"`
	PublicID  uuid.UUID `db:"public_id"  json:"id"`
	Body      string    `db:"body"       json:"body"`
	AuthorID  int64     `db:"author_id"  json:"-"`
	IssueID   int64     `db:"issue_id"   json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	AuthorUsername string `db:"-" json:"author"`
}
