package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/contacts-api/internal/logging"
	"github.com/redmonkez12/contacts-api/internal/user"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*user.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, email, username, passwordHash string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, user.ErrDuplicateEmail
		}
	}
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserStore) setVerified(userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID].EmailVerified = true
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*RefreshToken{}}
}

func (f *fakeTokenRepo) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[hashToken(token)] = &RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeTokenRepo) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.tokens[hashToken(token)]
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	copied := *rt
	return &copied, nil
}

func (f *fakeTokenRepo) RevokeRefreshToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.tokens[hashToken(token)]
	if !ok {
		return ErrRefreshTokenNotFound
	}
	if rt.RevokedAt != nil {
		return ErrRefreshTokenRevoked
	}
	now := time.Now()
	rt.RevokedAt = &now
	return nil
}

func (f *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, rt := range f.tokens {
		if rt.UserID == userID && rt.RevokedAt == nil {
			rt.RevokedAt = &now
		}
	}
	return nil
}

type fakeSessions struct {
	mu          sync.Mutex
	invalidated map[uuid.UUID]time.Time
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{invalidated: map[uuid.UUID]time.Time{}}
}

func (f *fakeSessions) InvalidateUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated[userID] = time.Now()
	return nil
}

func (f *fakeSessions) IsInvalidated(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	point, ok := f.invalidated[userID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(point), nil
}

type fakeEmailService struct {
	mu            sync.Mutex
	verifications int
	resets        int
}

func (f *fakeEmailService) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifications++
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

type authFixture struct {
	service  *Service
	users    *fakeUserStore
	tokens   *fakeTokenRepo
	sessions *fakeSessions
	paseto   *PasetoService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserStore()
	tokens := newFakeTokenRepo()
	sessions := newFakeSessions()
	pasetoSvc := newTestPasetoService(t)

	svc := NewService(
		users,
		tokens,
		nil, // password reset store is not exercised in these tests
		sessions,
		pasetoSvc,
		&fakeEmailService{},
		logging.NewLogger(true),
		15*time.Minute,
		7*24*time.Hour,
		24*time.Hour,
	)

	return &authFixture{service: svc, users: users, tokens: tokens, sessions: sessions, paseto: pasetoSvc}
}

func TestRegisterValidation(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantErr  error
	}{
		{"missing email", "", "alice", "password123", ErrEmailRequired},
		{"bad email", "not-an-email", "alice", "password123", ErrInvalidEmailFormat},
		{"missing username", "alice@example.com", "  ", "password123", ErrUsernameRequired},
		{"missing password", "alice@example.com", "alice", "", ErrPasswordRequired},
		{"short password", "alice@example.com", "alice", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.Register(ctx, tt.email, tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.service.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)

	_, err = fx.service.Register(ctx, "alice@example.com", "alice2", "password123")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestVerifyEmailIsIdempotent(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)

	token, err := fx.paseto.CreateToken(registered.ID, registered.Email, PurposeEmailVerification, time.Hour)
	require.NoError(t, err)

	require.NoError(t, fx.service.VerifyEmail(ctx, token))

	verified, err := fx.users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	// Confirming again with the same token succeeds and changes nothing
	require.NoError(t, fx.service.VerifyEmail(ctx, token))
}

func TestVerifyEmailRejectsAccessToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)

	accessToken, err := fx.paseto.CreateToken(registered.ID, registered.Email, PurposeAccess, time.Hour)
	require.NoError(t, err)

	err = fx.service.VerifyEmail(ctx, accessToken)
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestLogin(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)

	t.Run("unverified email", func(t *testing.T) {
		_, err := fx.service.Login(ctx, "alice@example.com", "password123")
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	fx.users.setVerified(registered.ID)

	t.Run("wrong password", func(t *testing.T) {
		_, err := fx.service.Login(ctx, "alice@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := fx.service.Login(ctx, "bob@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		tokens, err := fx.service.Login(ctx, "alice@example.com", "password123")
		require.NoError(t, err)

		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, "Bearer", tokens.TokenType)

		claims, err := fx.paseto.VerifyToken(tokens.AccessToken, PurposeAccess)
		require.NoError(t, err)
		assert.Equal(t, registered.ID.String(), claims.UserID)
	})
}

func TestRefreshRotationRejectsReplay(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)
	fx.users.setVerified(registered.ID)

	tokens, err := fx.service.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	rotated, err := fx.service.RefreshAccessToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// Replaying the rotated token must fail, not issue another pair
	_, err = fx.service.RefreshAccessToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)

	// The newest token still works
	_, err = fx.service.RefreshAccessToken(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.service.RefreshAccessToken(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)
	fx.users.setVerified(registered.ID)

	tokens, err := fx.service.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, fx.service.RevokeRefreshToken(ctx, tokens.RefreshToken))

	_, err = fx.service.RefreshAccessToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}
