package user

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/redmonkez12/contacts-api/internal/media"
)

// MaxAvatarSize caps avatar uploads at 5 MiB
const MaxAvatarSize = 5 << 20

var (
	ErrUnsupportedImage   = errors.New("unsupported image format")
	ErrImageTooLarge      = errors.New("image exceeds maximum size")
	ErrStorageUnavailable = errors.New("avatar storage unavailable")
)

// ProfileStore is the persistence interface the service depends on
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*User, error)
}

// AvatarUploader stores avatar bytes and returns their public URL
type AvatarUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service implements profile operations
type Service struct {
	repo    ProfileStore
	uploads AvatarUploader
}

func NewService(repo ProfileStore, uploads AvatarUploader) *Service {
	return &Service{repo: repo, uploads: uploads}
}

// GetProfile returns the authenticated user's profile
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return u, nil
}

// UpdateAvatar validates, uploads and records a new avatar image. The
// format is sniffed from magic bytes; the client's declared content type
// is ignored. A storage failure leaves the previous avatar URL in place.
func (s *Service) UpdateAvatar(ctx context.Context, userID uuid.UUID, file io.Reader) (*User, error) {
	// Read one byte past the cap to tell "exactly at cap" from "too big"
	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(data) > MaxAvatarSize {
		return nil, ErrImageTooLarge
	}

	detected, err := media.Detect(data)
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	key := fmt.Sprintf("avatars/%s.%s", userID, detected.Extension)
	avatarURL, err := s.uploads.Upload(ctx, key, data, detected.MIME)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	updated, err := s.repo.UpdateAvatar(ctx, userID, avatarURL)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to save avatar url: %w", err)
	}

	return updated, nil
}
