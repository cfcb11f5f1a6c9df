package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/redmonkez12/contacts-api/internal/config"
)

// AvatarStore uploads user avatars to an S3-compatible object store.
type AvatarStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewAvatarStore(cfg config.StorageConfig) (*AvatarStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &AvatarStore{
		client: client,
		cfg:    cfg,
	}, nil
}

// EnsureBucket creates the avatar bucket if it does not exist yet.
// Called once at startup.
func (s *AvatarStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

// Upload stores an avatar under a stable per-user key and returns the
// public URL. Re-uploading replaces the previous avatar with the same key
// unless the extension changed.
func (s *AvatarStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.cfg.AvatarBaseURL(), s.cfg.Bucket, key), nil
}
