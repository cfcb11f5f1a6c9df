package contact

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned both for missing contacts and contacts owned
	// by someone else, so callers can't probe which ids exist.
	ErrNotFound       = errors.New("contact not found")
	ErrDuplicateEmail = errors.New("contact with this email already exists")
)

type Contact struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  time.Time `json:"birthday"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput carries the fields for a new contact.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	Notes     *string
}

// UpdateInput carries a partial update; nil fields keep their value.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Birthday  *time.Time
	Notes     *string
}

// Page is one page of contacts plus the total match count, so clients can
// render pagination without a second request.
type Page struct {
	Items    []*Contact `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}
