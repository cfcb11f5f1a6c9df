package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/redmonkez12/contacts-api/internal/logging"
	"github.com/redmonkez12/contacts-api/internal/user"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailRequired            = errors.New("email is required")
	ErrUsernameRequired         = errors.New("username is required")
	ErrPasswordRequired         = errors.New("password is required")
	ErrPasswordTooShort         = errors.New("password must be at least 8 characters")
	ErrEmailNotVerified         = errors.New("email not verified, please check your inbox")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrInvalidEmailFormat       = errors.New("invalid email format")
)

// Argon2id parameters - tuned for security vs performance balance
// Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, email, username, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// Service handles authentication business logic
type Service struct {
	userRepo                  UserStore
	tokenRepo                 RefreshTokenRepository
	passwordResetRepo         *PasswordResetRepository
	sessions                  SessionInvalidator
	tokenService              TokenService
	emailService              EmailService
	logger                    *logging.Logger
	accessTokenDuration       time.Duration
	refreshTokenDuration      time.Duration
	verificationTokenDuration time.Duration
}

func NewService(
	userRepo UserStore,
	tokenRepo RefreshTokenRepository,
	passwordResetRepo *PasswordResetRepository,
	sessions SessionInvalidator,
	tokenService TokenService,
	emailService EmailService,
	logger *logging.Logger,
	accessTokenDuration time.Duration,
	refreshTokenDuration time.Duration,
	verificationTokenDuration time.Duration,
) *Service {
	return &Service{
		userRepo:                  userRepo,
		tokenRepo:                 tokenRepo,
		passwordResetRepo:         passwordResetRepo,
		sessions:                  sessions,
		tokenService:              tokenService,
		emailService:              emailService,
		logger:                    logger,
		accessTokenDuration:       accessTokenDuration,
		refreshTokenDuration:      refreshTokenDuration,
		verificationTokenDuration: verificationTokenDuration,
	}
}

// Register creates a new user account and sends a verification email
func (s *Service) Register(ctx context.Context, email, username, password string) (*user.User, error) {
	// Validate input
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if strings.TrimSpace(username) == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	// Hash password using argon2id
	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, email, strings.TrimSpace(username), passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Verification token is signed and self-contained, nothing to persist
	verificationToken, err := s.tokenService.CreateToken(newUser.ID, newUser.Email, PurposeEmailVerification, s.verificationTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}

	// Send verification email in a goroutine (non-blocking)
	go func() {
		// Create a new context for the goroutine to avoid cancellation issues
		emailCtx := context.Background()
		if err := s.emailService.SendVerificationEmail(emailCtx, newUser.Email, verificationToken); err != nil {
			// Log error but don't fail registration
			// User can request a new verification email later
			s.logger.Warn("failed to send verification email", "email", newUser.Email, "error", err)
		}
	}()

	return newUser, nil
}

// VerifyEmail marks the account named by a verification token as verified.
// Verifying twice with the same valid token succeeds both times; the second
// call changes nothing.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokenService.VerifyToken(token, PurposeEmailVerification)
	if err != nil {
		return ErrInvalidVerificationToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidVerificationToken
	}

	existingUser, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existingUser.EmailVerified {
		return nil
	}

	if err := s.userRepo.MarkEmailVerified(ctx, existingUser.ID); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	return nil
}

// Login authenticates a user and returns a token pair
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.verifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !existingUser.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	tokens, err := s.generateTokens(ctx, existingUser.ID, existingUser.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// RefreshAccessToken rotates a refresh token: the presented token is
// revoked and a fresh pair is issued. A rotated token replayed later fails
// with ErrRefreshTokenRevoked, it is never silently re-issued.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	rt, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if rt.IsRevoked() {
		return nil, ErrRefreshTokenRevoked
	}
	if rt.IsExpired() {
		return nil, ErrRefreshTokenExpired
	}

	// Revoke before issuing; the conditional update in the repository is
	// the gate that makes concurrent replays lose.
	if err := s.tokenRepo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenRevoked) {
			return nil, ErrRefreshTokenRevoked
		}
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	existingUser, err := s.userRepo.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tokens, err := s.generateTokens(ctx, existingUser.ID, existingUser.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// RevokeRefreshToken revokes a refresh token (logout)
func (s *Service) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.RevokeRefreshToken(ctx, refreshToken)
}

// RequestPasswordReset initiates the password reset process
// Always returns nil to prevent email enumeration attacks
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal if user exists
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		s.logger.Warn("failed to get user for password reset", "error", err)
		return nil
	}

	token, err := generateRandomToken()
	if err != nil {
		s.logger.Warn("failed to generate password reset token", "error", err)
		return nil
	}

	if err := s.passwordResetRepo.StorePasswordResetToken(ctx, existingUser.ID, token); err != nil {
		s.logger.Warn("failed to store password reset token", "error", err)
		return nil
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendPasswordResetEmail(emailCtx, existingUser.Email, token); err != nil {
			s.logger.Warn("failed to send password reset email", "email", existingUser.Email, "error", err)
		}
	}()

	return nil
}

// ResetPassword resets a user's password using a valid reset token and
// force-invalidates every session the user had.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	userID, err := s.passwordResetRepo.GetPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrPasswordResetTokenNotFound) {
			return ErrPasswordResetTokenNotFound
		}
		return fmt.Errorf("failed to get password reset token: %w", err)
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.passwordResetRepo.DeletePasswordResetToken(ctx, token); err != nil {
		s.logger.Warn("failed to delete password reset token", "error", err)
	}

	// Kill everything issued before now: refresh tokens in Postgres and
	// still-live access tokens via the session cache.
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke all user tokens after password reset", "error", err)
	}
	if err := s.sessions.InvalidateUser(ctx, userID, s.accessTokenDuration); err != nil {
		s.logger.Warn("failed to invalidate user sessions after password reset", "error", err)
	}

	return nil
}

// ResendVerificationEmail sends a new verification email to the user
// Always returns nil to prevent email enumeration attacks
func (s *Service) ResendVerificationEmail(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal if user exists
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		s.logger.Warn("failed to get user for resend verification", "error", err)
		return nil
	}

	// Don't reveal that email is already verified
	if existingUser.EmailVerified {
		return nil
	}

	token, err := s.tokenService.CreateToken(existingUser.ID, existingUser.Email, PurposeEmailVerification, s.verificationTokenDuration)
	if err != nil {
		s.logger.Warn("failed to create verification token", "error", err)
		return nil
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendVerificationEmail(emailCtx, existingUser.Email, token); err != nil {
			s.logger.Warn("failed to resend verification email", "email", existingUser.Email, "error", err)
		}
	}()

	return nil
}

// generateTokens creates both access and refresh tokens
func (s *Service) generateTokens(ctx context.Context, userID uuid.UUID, email string) (*AuthTokens, error) {
	// Generate access token (short-lived)
	accessToken, err := s.tokenService.CreateToken(userID, email, PurposeAccess, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	// Generate refresh token (long-lived, random string)
	refreshToken, err := generateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Store refresh token in database
	expiresAt := time.Now().Add(s.refreshTokenDuration)
	if err := s.tokenRepo.StoreRefreshToken(ctx, userID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenDuration.Seconds()),
	}, nil
}

// hashPassword creates an argon2id hash of the password
func (s *Service) hashPassword(password string) (string, error) {
	// Generate random salt
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	// Hash password with argon2id
	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifyPassword checks if a password matches the stored hash
func (s *Service) verifyPassword(encodedHash, password string) bool {
	// Parse the encoded hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	// Parse parameters
	var version int
	var memory, time uint32
	var threads uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads)
	if err != nil {
		return false
	}
	_, err = fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return false
	}

	// Decode salt and hash
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Hash the input password with the same parameters
	inputHash := argon2.IDKey(
		[]byte(password),
		salt,
		time,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	// Compare hashes using constant-time comparison
	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}

// generateRandomToken creates a cryptographically secure random token
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
