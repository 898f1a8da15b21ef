package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can own projects, author and be assigned issues,
// and request report jobs. PassHash is a bcrypt hash and is never serialized.
type User struct {
	ID        int64     `db:"id"         json:"-"`
	PublicID  uuid.UUID `db:"public_id"  json:"id"`
	Email     string    `db:"email"      json:"email"`
	Name      string    `db:"name"       json:"full_name"`
	Username  string    `db:"username"   json:"username"`
	PassHash  string    `db:"pass_hash"  json:"-"`
	Admin     bool      `db:"admin"      json:"admin"`
	Disabled  bool      `db:"disabled"   json:"disabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RefreshToken is a revocable refresh token record. PublicID carries the
// token's jti claim; a token is usable until RevokedAt is set or ExpiresAt
// passes.
type RefreshToken struct {
	ID        int64      `db:"id"         json:"-"`
	PublicID  string     `db:"public_id"  json:"jti"`
	UserID    int64      `db:"user_id"    json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
