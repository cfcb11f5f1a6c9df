package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrValidation wraps all input validation failures so handlers can map
// them to a single status code.
var ErrValidation = errors.New("validation error")

// Window is a birthday search window expressed as month*100+day bounds.
// When Wraps is set the window crosses Dec 31 and means
// [Start..1231] union [0101..End].
type Window struct {
	Start int
	End   int
	Wraps bool
}

// Store is the persistence interface the service depends on.
type Store interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*Contact, error)
	GetByID(ctx context.Context, contactID uuid.UUID) (*Contact, error)
	Update(ctx context.Context, ownerID uuid.UUID, c *Contact) (*Contact, error)
	Delete(ctx context.Context, ownerID, contactID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Contact, int, error)
	Search(ctx context.Context, ownerID uuid.UUID, query string, limit, offset int) ([]*Contact, int, error)
	UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, window Window, limit, offset int) ([]*Contact, int, error)
}

// Service implements the contact business rules. All operations take the
// authenticated owner's id; a contact owned by someone else is reported as
// not found, never as forbidden.
type Service struct {
	repo            Store
	defaultPageSize int
	maxPageSize     int
	defaultWindow   int

	// now is swapped in tests to pin the birthday window
	now func() time.Time
}

func NewService(repo Store, defaultPageSize, maxPageSize, defaultWindow int) *Service {
	return &Service{
		repo:            repo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		defaultWindow:   defaultWindow,
		now:             time.Now,
	}
}

// Create validates and stores a new contact for the owner
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*Contact, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, ownerID, input)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return created, nil
}

// Get returns one of the owner's contacts by id
func (s *Service) Get(ctx context.Context, ownerID, contactID uuid.UUID) (*Contact, error) {
	return s.getOwned(ctx, ownerID, contactID)
}

// Update applies a partial update to one of the owner's contacts.
// Nil input fields keep their current value.
func (s *Service) Update(ctx context.Context, ownerID, contactID uuid.UUID, input UpdateInput) (*Contact, error) {
	existing, err := s.getOwned(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		existing.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		existing.LastName = *input.LastName
	}
	if input.Email != nil {
		existing.Email = *input.Email
	}
	if input.Phone != nil {
		existing.Phone = *input.Phone
	}
	if input.Birthday != nil {
		existing.Birthday = *input.Birthday
	}
	if input.Notes != nil {
		existing.Notes = input.Notes
	}

	if err := validateInput(CreateInput{
		FirstName: existing.FirstName,
		LastName:  existing.LastName,
		Email:     existing.Email,
		Phone:     existing.Phone,
		Birthday:  existing.Birthday,
	}); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, ownerID, existing)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return updated, nil
}

// Delete permanently removes one of the owner's contacts
func (s *Service) Delete(ctx context.Context, ownerID, contactID uuid.UUID) error {
	if _, err := s.getOwned(ctx, ownerID, contactID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, ownerID, contactID)
}

// List returns one page of the owner's contacts in stable order
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) (*Page, error) {
	page, pageSize = s.normalizePage(page, pageSize)

	items, total, err := s.repo.List(ctx, ownerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return newPage(items, total, page, pageSize), nil
}

// Search matches the query case-insensitively against first name, last
// name and email.
func (s *Service) Search(ctx context.Context, ownerID uuid.UUID, query string, page, pageSize int) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, ownerID, page, pageSize)
	}

	page, pageSize = s.normalizePage(page, pageSize)

	items, total, err := s.repo.Search(ctx, ownerID, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}

	return newPage(items, total, page, pageSize), nil
}

// UpcomingBirthdays returns contacts whose birthday falls within
// [today, today+days], month and day only, including windows that wrap
// across a year boundary.
func (s *Service) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, days, page, pageSize int) (*Page, error) {
	if days <= 0 {
		days = s.defaultWindow
	}
	page, pageSize = s.normalizePage(page, pageSize)

	window := birthdayWindow(s.now(), days)

	items, total, err := s.repo.UpcomingBirthdays(ctx, ownerID, window, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming birthdays: %w", err)
	}

	return newPage(items, total, page, pageSize), nil
}

// getOwned fetches a contact and verifies ownership explicitly. The
// repository scopes writes by owner as well, but the invariant lives here
// where it is visible and testable.
func (s *Service) getOwned(ctx context.Context, ownerID, contactID uuid.UUID) (*Contact, error) {
	c, err := s.repo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if c.UserID != ownerID {
		return nil, ErrNotFound
	}

	return c, nil
}

func (s *Service) normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize
}

func newPage(items []*Contact, total, page, pageSize int) *Page {
	if items == nil {
		items = []*Contact{}
	}
	return &Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

// birthdayWindow computes the month/day window covering
// [today, today+days] inclusive. Comparing month*100+day instead of day of
// year keeps Feb 29 from shifting the window in leap years.
func birthdayWindow(today time.Time, days int) Window {
	if days >= 365 {
		return Window{Start: 101, End: 1231}
	}

	start := monthDay(today)
	end := monthDay(today.AddDate(0, 0, days))

	return Window{Start: start, End: end, Wraps: end < start}
}

func monthDay(t time.Time) int {
	return int(t.Month())*100 + t.Day()
}

func validateInput(input CreateInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrValidation)
	}
	if len(input.FirstName) > 50 {
		return fmt.Errorf("%w: first name must be at most 50 characters", ErrValidation)
	}
	if strings.TrimSpace(input.LastName) == "" {
		return fmt.Errorf("%w: last name is required", ErrValidation)
	}
	if len(input.LastName) > 50 {
		return fmt.Errorf("%w: last name must be at most 50 characters", ErrValidation)
	}
	if input.Email == "" || len(input.Email) > 100 {
		return fmt.Errorf("%w: email is required and must be at most 100 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if strings.TrimSpace(input.Phone) == "" || len(input.Phone) > 15 {
		return fmt.Errorf("%w: phone is required and must be at most 15 characters", ErrValidation)
	}
	if input.Birthday.IsZero() {
		return fmt.Errorf("%w: birthday is required", ErrValidation)
	}
	return nil
}
