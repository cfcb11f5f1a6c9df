package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const passwordResetTokenTTL = 1 * time.Hour

// PasswordResetRepository handles password reset token storage in Redis.
// Tokens are single-use and expire via TTL; only the hash is stored.
type PasswordResetRepository struct {
	client *redis.Client
}

func NewPasswordResetRepository(client *redis.Client) *PasswordResetRepository {
	return &PasswordResetRepository{client: client}
}

func passwordResetKey(token string) string {
	return fmt.Sprintf("password_reset:%s", hashToken(token))
}

// StorePasswordResetToken stores a password reset token with 1-hour TTL
func (r *PasswordResetRepository) StorePasswordResetToken(ctx context.Context, userID uuid.UUID, token string) error {
	err := r.client.Set(ctx, passwordResetKey(token), userID.String(), passwordResetTokenTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}

	return nil
}

// GetPasswordResetToken retrieves the user ID associated with a password reset token
func (r *PasswordResetRepository) GetPasswordResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	userIDStr, err := r.client.Get(ctx, passwordResetKey(token)).Result()
	if err == redis.Nil {
		return uuid.Nil, ErrPasswordResetTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get password reset token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	return userID, nil
}

// DeletePasswordResetToken removes a used password reset token
func (r *PasswordResetRepository) DeletePasswordResetToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, passwordResetKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete password reset token: %w", err)
	}

	return nil
}
