package userapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. The password hash is never serialized in responses;
// reads used to echo it back verbatim, which was an information-disclosure
// gap, so the wire shape excludes it outright.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name         string     `bun:"name,notnull" json:"name,omitempty"`
	Email        string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserPatch carries the partial fields of a merge-on-update request. Nil
// fields are preserved from the stored record.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// RemoveAck is the structured acknowledgment returned by UserService.Remove
type RemoveAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
