package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPasetoService(t *testing.T) *PasetoService {
	t.Helper()
	svc, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return svc
}

func TestPasetoRoundTrip(t *testing.T) {
	svc := newTestPasetoService(t)
	userID := uuid.New()

	token, err := svc.CreateToken(userID, "alice@example.com", PurposeAccess, 15*time.Minute)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token, PurposeAccess)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, PurposeAccess, claims.Purpose)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestPasetoPurposeMismatch(t *testing.T) {
	svc := newTestPasetoService(t)

	// A verification token must never pass as an access token
	token, err := svc.CreateToken(uuid.New(), "alice@example.com", PurposeEmailVerification, time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoExpiredToken(t *testing.T) {
	svc := newTestPasetoService(t)

	token, err := svc.CreateToken(uuid.New(), "alice@example.com", PurposeAccess, -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoGarbageToken(t *testing.T) {
	svc := newTestPasetoService(t)

	_, err := svc.VerifyToken("not-a-token", PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoWrongKey(t *testing.T) {
	svc := newTestPasetoService(t)
	other, err := NewPasetoService([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), "alice@example.com", PurposeAccess, time.Hour)
	require.NoError(t, err)

	_, err = other.VerifyToken(token, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
