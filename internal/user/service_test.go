package user

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileStore struct {
	users map[uuid.UUID]*User
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{users: map[uuid.UUID]*User{}}
}

func (f *fakeProfileStore) add(u *User) {
	f.users[u.ID] = u
}

func (f *fakeProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeProfileStore) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	u.AvatarURL = &avatarURL
	copied := *u
	return &copied, nil
}

type fakeUploader struct {
	lastKey         string
	lastContentType string
	err             error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastKey = key
	f.lastContentType = contentType
	return "https://cdn.example.com/" + key, nil
}

func testUser() *User {
	return &User{
		ID:        uuid.New(),
		Email:     "alice@example.com",
		Username:  "alice",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}

func TestGetProfile(t *testing.T) {
	store := newFakeProfileStore()
	u := testUser()
	store.add(u)

	svc := NewService(store, &fakeUploader{})

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAvatar(t *testing.T) {
	store := newFakeProfileStore()
	u := testUser()
	store.add(u)

	uploader := &fakeUploader{}
	svc := NewService(store, uploader)

	updated, err := svc.UpdateAvatar(context.Background(), u.ID, bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("avatars/%s.png", u.ID), uploader.lastKey)
	assert.Equal(t, "image/png", uploader.lastContentType)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/"+uploader.lastKey, *updated.AvatarURL)
}

func TestUpdateAvatarRejectsUnknownFormat(t *testing.T) {
	store := newFakeProfileStore()
	u := testUser()
	store.add(u)

	svc := NewService(store, &fakeUploader{})

	_, err := svc.UpdateAvatar(context.Background(), u.ID, bytes.NewReader([]byte("definitely not an image")))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	// The avatar URL stays untouched
	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AvatarURL)
}

func TestUpdateAvatarRejectsOversizedImage(t *testing.T) {
	store := newFakeProfileStore()
	u := testUser()
	store.add(u)

	svc := NewService(store, &fakeUploader{})

	oversized := make([]byte, MaxAvatarSize+1)
	copy(oversized, pngHeader)

	_, err := svc.UpdateAvatar(context.Background(), u.ID, bytes.NewReader(oversized))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestUpdateAvatarStorageFailure(t *testing.T) {
	store := newFakeProfileStore()
	u := testUser()
	store.add(u)

	uploader := &fakeUploader{err: errors.New("connection refused")}
	svc := NewService(store, uploader)

	_, err := svc.UpdateAvatar(context.Background(), u.ID, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AvatarURL)
}
