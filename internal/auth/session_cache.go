package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionCache records per-user session invalidation points in Redis.
// Access tokens issued before the recorded point are rejected by the auth
// middleware even though their signature and expiry are still valid.
type SessionCache struct {
	client *redis.Client
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

func sessionInvalidationKey(userID uuid.UUID) string {
	return fmt.Sprintf("session_invalidated:%s", userID.String())
}

// InvalidateUser marks all of the user's current sessions as revoked.
// TTL should cover the longest-lived access token still in circulation.
func (c *SessionCache) InvalidateUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	key := sessionInvalidationKey(userID)
	now := time.Now().Unix()

	if err := c.client.Set(ctx, key, now, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session invalidation: %w", err)
	}

	return nil
}

// IsInvalidated reports whether a token issued at issuedAt predates the
// user's invalidation point.
func (c *SessionCache) IsInvalidated(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error) {
	key := sessionInvalidationKey(userID)

	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check session invalidation: %w", err)
	}

	invalidatedAt, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse session invalidation timestamp: %w", err)
	}

	return !issuedAt.After(time.Unix(invalidatedAt, 0)), nil
}
