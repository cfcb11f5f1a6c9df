package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/contacts-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, email, username, passwordHash string) (*User, error) {
	dbUser := &database.User{
		Email:         email,
		Username:      username,
		PasswordHash:  passwordHash,
		EmailVerified: false,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// MarkEmailVerified sets the verified flag. Verifying an already verified
// user is a no-op at this layer; the service decides idempotency semantics.
func (r *Repository) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email_verified = ?", true).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateAvatar stores the avatar URL on the user record and returns the
// updated user.
func (r *Repository) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewUpdate().
		Model(dbUser).
		Set("avatar_url = ?", avatarURL).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:            dbu.ID,
		Email:         dbu.Email,
		Username:      dbu.Username,
		PasswordHash:  dbu.PasswordHash,
		AvatarURL:     dbu.AvatarURL,
		EmailVerified: dbu.EmailVerified,
		CreatedAt:     dbu.CreatedAt,
		UpdatedAt:     dbu.UpdatedAt,
	}
}
