package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups issues under a short key like "NIM". The (user_id, key)
// pair is unique; issue human keys are "{project key}-{issue key}".
type Project struct {
	ID        int64     `db:"id"         json:"-"`
	PublicID  uuid.UUID `db:"public_id"  json:"id"`
	Title     string    `db:"title"      json:"title"`
	Key       string    `db:"key"        json:"key"`
	UserID    int64     `db:"user_id"    json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// AuthorUsername is joined from users; not a projects column.
	AuthorUsername string `db:"-" json:"author"`
}
