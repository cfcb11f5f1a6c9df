package contact

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	contacts map[uuid.UUID]*Contact

	// captured by the paging and birthday queries
	lastLimit  int
	lastOffset int
	lastWindow Window
	lastQuery  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{contacts: map[uuid.UUID]*Contact{}}
}

func (f *fakeStore) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*Contact, error) {
	for _, c := range f.contacts {
		if c.UserID == ownerID && c.Email == input.Email {
			return nil, ErrDuplicateEmail
		}
	}
	c := &Contact{
		ID:        uuid.New(),
		UserID:    ownerID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Birthday:  input.Birthday,
		Notes:     input.Notes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.contacts[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetByID(ctx context.Context, contactID uuid.UUID) (*Contact, error) {
	c, ok := f.contacts[contactID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) Update(ctx context.Context, ownerID uuid.UUID, c *Contact) (*Contact, error) {
	existing, ok := f.contacts[c.ID]
	if !ok || existing.UserID != ownerID {
		return nil, ErrNotFound
	}
	updated := *c
	updated.UpdatedAt = time.Now()
	f.contacts[c.ID] = &updated
	copied := updated
	return &copied, nil
}

func (f *fakeStore) Delete(ctx context.Context, ownerID, contactID uuid.UUID) error {
	existing, ok := f.contacts[contactID]
	if !ok || existing.UserID != ownerID {
		return ErrNotFound
	}
	delete(f.contacts, contactID)
	return nil
}

func (f *fakeStore) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Contact, int, error) {
	f.lastLimit = limit
	f.lastOffset = offset

	var owned []*Contact
	for _, c := range f.contacts {
		if c.UserID == ownerID {
			owned = append(owned, c)
		}
	}
	return owned, len(owned), nil
}

func (f *fakeStore) Search(ctx context.Context, ownerID uuid.UUID, query string, limit, offset int) ([]*Contact, int, error) {
	f.lastQuery = query
	f.lastLimit = limit
	f.lastOffset = offset
	return nil, 0, nil
}

func (f *fakeStore) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, window Window, limit, offset int) ([]*Contact, int, error) {
	f.lastWindow = window
	f.lastLimit = limit
	f.lastOffset = offset
	return nil, 0, nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, 20, 100, 7)
}

func validInput() CreateInput {
	return CreateInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Phone:     "+420123456789",
		Birthday:  time.Date(1992, time.March, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()
	ownerID := uuid.New()

	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'a'
		}
		return string(b)
	}

	tests := []struct {
		name   string
		modify func(*CreateInput)
	}{
		{"missing first name", func(in *CreateInput) { in.FirstName = "  " }},
		{"first name too long", func(in *CreateInput) { in.FirstName = long(51) }},
		{"missing last name", func(in *CreateInput) { in.LastName = "" }},
		{"last name too long", func(in *CreateInput) { in.LastName = long(51) }},
		{"missing email", func(in *CreateInput) { in.Email = "" }},
		{"email too long", func(in *CreateInput) { in.Email = long(95) + "@x.com" }},
		{"bad email", func(in *CreateInput) { in.Email = "not-an-email" }},
		{"missing phone", func(in *CreateInput) { in.Phone = "" }},
		{"phone too long", func(in *CreateInput) { in.Phone = "+4201234567890123" }},
		{"missing birthday", func(in *CreateInput) { in.Birthday = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(&input)

			_, err := svc.Create(ctx, ownerID, input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateDuplicateEmailPerOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	ownerID := uuid.New()

	_, err := svc.Create(ctx, ownerID, validInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, ownerID, validInput())
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// The same email under another owner is fine
	_, err = svc.Create(ctx, uuid.New(), validInput())
	assert.NoError(t, err)
}

func TestOwnershipIsReportedAsNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	ownerID := uuid.New()
	otherID := uuid.New()

	created, err := svc.Create(ctx, ownerID, validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, otherID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	newName := "Mallory"
	_, err = svc.Update(ctx, otherID, created.ID, UpdateInput{FirstName: &newName})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, otherID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The owner still sees the untouched contact
	got, err := svc.Get(ctx, ownerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FirstName)
}

func TestUpdateMergesPartialInput(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	ownerID := uuid.New()

	created, err := svc.Create(ctx, ownerID, validInput())
	require.NoError(t, err)

	newPhone := "+420987654321"
	updated, err := svc.Update(ctx, ownerID, created.ID, UpdateInput{Phone: &newPhone})
	require.NoError(t, err)

	assert.Equal(t, newPhone, updated.Phone)
	assert.Equal(t, created.FirstName, updated.FirstName)
	assert.Equal(t, created.Email, updated.Email)
}

func TestUpdateValidatesMergedResult(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	ownerID := uuid.New()

	created, err := svc.Create(ctx, ownerID, validInput())
	require.NoError(t, err)

	empty := ""
	_, err = svc.Update(ctx, ownerID, created.ID, UpdateInput{FirstName: &empty})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListNormalizesPaging(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	ownerID := uuid.New()

	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantLimit  int
		wantOffset int
		wantPage   int
	}{
		{"defaults", 0, 0, 20, 0, 1},
		{"negative page", -3, 10, 10, 0, 1},
		{"page size capped", 1, 500, 100, 0, 1},
		{"offset from page", 3, 10, 10, 20, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.List(ctx, ownerID, tt.page, tt.pageSize)
			require.NoError(t, err)

			assert.Equal(t, tt.wantLimit, store.lastLimit)
			assert.Equal(t, tt.wantOffset, store.lastOffset)
			assert.Equal(t, tt.wantPage, result.Page)
			assert.Equal(t, tt.wantLimit, result.PageSize)
		})
	}
}

func TestListReturnsEmptySliceNotNil(t *testing.T) {
	svc := newTestService(newFakeStore())

	result, err := svc.List(context.Background(), uuid.New(), 1, 20)
	require.NoError(t, err)

	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
}

func TestSearchEmptyQueryFallsBackToList(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	ownerID := uuid.New()

	_, err := svc.Create(ctx, ownerID, validInput())
	require.NoError(t, err)

	result, err := svc.Search(ctx, ownerID, "   ", 1, 20)
	require.NoError(t, err)

	// Fell through to List, the search query was never used
	assert.Empty(t, store.lastQuery)
	assert.Equal(t, 1, result.Total)
}

func TestBirthdayWindow(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		days  int
		want  Window
	}{
		{
			"mid year",
			time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
			7,
			Window{Start: 601, End: 608},
		},
		{
			"wraps into january",
			time.Date(2026, time.December, 30, 0, 0, 0, 0, time.UTC),
			7,
			Window{Start: 1230, End: 106, Wraps: true},
		},
		{
			"single day",
			time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
			0,
			Window{Start: 314, End: 314},
		},
		{
			"full year",
			time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
			365,
			Window{Start: 101, End: 1231},
		},
		{
			"across leap day",
			time.Date(2024, time.February, 27, 0, 0, 0, 0, time.UTC),
			7,
			Window{Start: 227, End: 305},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, birthdayWindow(tt.today, tt.days))
		})
	}
}

func TestUpcomingBirthdaysUsesPinnedClock(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	svc.now = func() time.Time {
		return time.Date(2026, time.December, 30, 12, 0, 0, 0, time.UTC)
	}

	_, err := svc.UpcomingBirthdays(context.Background(), uuid.New(), 7, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, Window{Start: 1230, End: 106, Wraps: true}, store.lastWindow)
}

func TestUpcomingBirthdaysDefaultWindow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	svc.now = func() time.Time {
		return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	}

	_, err := svc.UpcomingBirthdays(context.Background(), uuid.New(), 0, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, Window{Start: 601, End: 608}, store.lastWindow)
}
