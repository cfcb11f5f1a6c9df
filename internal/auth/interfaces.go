package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService defines the interface for token creation and validation.
type TokenService interface {
	CreateToken(userID uuid.UUID, email, purpose string, duration time.Duration) (string, error)
	VerifyToken(tokenStr, purpose string) (*TokenClaims, error)
}

// RefreshTokenRepository defines the interface for refresh token storage
type RefreshTokenRepository interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// SessionInvalidator force-invalidates all access tokens of a user that
// were issued before the invalidation point.
type SessionInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	IsInvalidated(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error)
}
