package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database representation of an account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email         string    `bun:"email,notnull,unique"`
	Username      string    `bun:"username,notnull"`
	PasswordHash  string    `bun:"password_hash,notnull"`
	AvatarURL     *string   `bun:"avatar_url"`
	EmailVerified bool      `bun:"email_verified,notnull,default:false"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:now()"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:now()"`
}

// Contact is the database representation of an owner-scoped contact.
// Email is unique per owner, not globally.
type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:c"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	FirstName string    `bun:"first_name,notnull"`
	LastName  string    `bun:"last_name,notnull"`
	Email     string    `bun:"email,notnull"`
	Phone     string    `bun:"phone,notnull"`
	Birthday  time.Time `bun:"birthday,notnull,type:date"`
	Notes     *string   `bun:"notes"`
	CreatedAt time.Time `bun:"created_at,notnull,default:now()"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:now()"`
}

// RefreshToken stores the SHA-256 hash of an issued refresh token.
// The plaintext token never touches the database.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	TokenHash string     `bun:"token_hash,notnull,unique"`
	ExpiresAt time.Time  `bun:"expires_at,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:now()"`
	RevokedAt *time.Time `bun:"revoked_at"`
}
