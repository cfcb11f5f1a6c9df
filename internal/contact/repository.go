package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/contacts-api/internal/database"
)

// Repository handles contact persistence. Every query that reads or writes
// on behalf of an owner is additionally scoped by user_id; the service
// layer performs its own ownership check on top of that.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new contact for the owner
func (r *Repository) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*Contact, error) {
	dbContact := &database.Contact{
		UserID:    ownerID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Birthday:  input.Birthday,
		Notes:     input.Notes,
	}

	_, err := r.db.NewInsert().
		Model(dbContact).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "contacts_email_user_unique") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return mapDBContactToModel(dbContact), nil
}

// GetByID retrieves a contact by id regardless of owner. The service
// compares the owner itself so the check is visible and testable there.
func (r *Repository) GetByID(ctx context.Context, contactID uuid.UUID) (*Contact, error) {
	dbContact := new(database.Contact)
	err := r.db.NewSelect().
		Model(dbContact).
		Where("id = ?", contactID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return mapDBContactToModel(dbContact), nil
}

// Update persists the mutable fields of a contact, scoped by owner
func (r *Repository) Update(ctx context.Context, ownerID uuid.UUID, c *Contact) (*Contact, error) {
	dbContact := new(database.Contact)
	err := r.db.NewUpdate().
		Model(dbContact).
		Set("first_name = ?", c.FirstName).
		Set("last_name = ?", c.LastName).
		Set("email = ?", c.Email).
		Set("phone = ?", c.Phone).
		Set("birthday = ?", c.Birthday).
		Set("notes = ?", c.Notes).
		Set("updated_at = NOW()").
		Where("id = ?", c.ID).
		Where("user_id = ?", ownerID).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if strings.Contains(err.Error(), "contacts_email_user_unique") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return mapDBContactToModel(dbContact), nil
}

// Delete permanently removes a contact, scoped by owner
func (r *Repository) Delete(ctx context.Context, ownerID, contactID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Contact)(nil)).
		Where("id = ?", contactID).
		Where("user_id = ?", ownerID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// List returns one page of the owner's contacts plus the total count.
// Ordering by (created_at, id) keeps pages stable across requests.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Contact, int, error) {
	var dbContacts []database.Contact
	total, err := r.db.NewSelect().
		Model(&dbContacts).
		Where("user_id = ?", ownerID).
		Order("created_at ASC", "id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}

	return mapDBContactsToModels(dbContacts), total, nil
}

// Search returns contacts whose first name, last name or email contains
// the query, case-insensitively.
func (r *Repository) Search(ctx context.Context, ownerID uuid.UUID, query string, limit, offset int) ([]*Contact, int, error) {
	pattern := "%" + escapeLike(query) + "%"

	var dbContacts []database.Contact
	total, err := r.db.NewSelect().
		Model(&dbContacts).
		Where("user_id = ?", ownerID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("first_name ILIKE ?", pattern).
				WhereOr("last_name ILIKE ?", pattern).
				WhereOr("email ILIKE ?", pattern)
		}).
		Order("created_at ASC", "id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to search contacts: %w", err)
	}

	return mapDBContactsToModels(dbContacts), total, nil
}

// UpcomingBirthdays returns contacts whose birthday (month/day, year
// ignored) falls inside the window. A window that crosses Dec 31 arrives
// here already split into a wrapped range and becomes an OR of two ranges.
func (r *Repository) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, window Window, limit, offset int) ([]*Contact, int, error) {
	const monthDay = "to_char(birthday, 'MMDD')::int"

	var dbContacts []database.Contact
	q := r.db.NewSelect().
		Model(&dbContacts).
		Where("user_id = ?", ownerID)

	if window.Wraps {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr(monthDay+" >= ?", window.Start).
				WhereOr(monthDay+" <= ?", window.End)
		})
	} else {
		q = q.
			Where(monthDay+" >= ?", window.Start).
			Where(monthDay+" <= ?", window.End)
	}

	total, err := q.
		OrderExpr(monthDay + " ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to get upcoming birthdays: %w", err)
	}

	return mapDBContactsToModels(dbContacts), total, nil
}

// escapeLike escapes LIKE metacharacters in user-supplied search input
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func mapDBContactToModel(dbc *database.Contact) *Contact {
	return &Contact{
		ID:        dbc.ID,
		UserID:    dbc.UserID,
		FirstName: dbc.FirstName,
		LastName:  dbc.LastName,
		Email:     dbc.Email,
		Phone:     dbc.Phone,
		Birthday:  dbc.Birthday,
		Notes:     dbc.Notes,
		CreatedAt: dbc.CreatedAt,
		UpdatedAt: dbc.UpdatedAt,
	}
}

func mapDBContactsToModels(dbContacts []database.Contact) []*Contact {
	contacts := make([]*Contact, len(dbContacts))
	for i := range dbContacts {
		contacts[i] = mapDBContactToModel(&dbContacts[i])
	}
	return contacts
}
