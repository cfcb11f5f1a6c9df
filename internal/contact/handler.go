package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/contacts-api/internal/auth"
	"github.com/redmonkez12/contacts-api/internal/httputil"
	"github.com/redmonkez12/contacts-api/internal/logging"
)

const birthdayLayout = "2006-01-02"

// Handler contains HTTP handlers for contact endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// ContactRequest represents the create request body; birthday is a
// date-only string (YYYY-MM-DD).
type ContactRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Birthday  string  `json:"birthday"`
	Notes     *string `json:"notes"`
}

// ContactUpdateRequest represents a partial update; absent fields keep
// their current value.
type ContactUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Birthday  *string `json:"birthday"`
	Notes     *string `json:"notes"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  string    `json:"birthday"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageResponse is one page of contacts plus the total match count
type PageResponse struct {
	Items    []ContactResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// Create handles contact creation
// @Summary      Create a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request body ContactRequest true "Contact fields"
// @Security     BearerAuth
// @Success      201 {object} ContactResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "Duplicate contact email"
// @Router       /contacts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, _ := auth.GetUserIDFromContext(r.Context())

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	birthday, err := time.Parse(birthdayLayout, req.Birthday)
	if err != nil {
		respondError(w, "birthday must be in YYYY-MM-DD format", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), ownerID, CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  birthday,
		Notes:     req.Notes,
	})
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to create contact")
		return
	}

	logger.Info("contact created", "contact_id", created.ID)
	httputil.RespondJSON(w, toResponse(created), http.StatusCreated)
}

// Get handles fetching a single contact
// @Summary      Get a contact
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Security     BearerAuth
// @Success      200 {object} ContactResponse
// @Failure      404 {object} httputil.ErrorResponse "Not found or not owned"
// @Router       /contacts/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, _ := auth.GetUserIDFromContext(r.Context())

	contactID, ok := parseContactID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), ownerID, contactID)
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to get contact")
		return
	}

	httputil.RespondJSON(w, toResponse(c), http.StatusOK)
}

// Update handles partial contact updates
// @Summary      Update a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contact ID"
// @Param        request body ContactUpdateRequest true "Fields to update"
// @Security     BearerAuth
// @Success      200 {object} ContactResponse
// @Failure      404 {object} httputil.ErrorResponse "Not found or not owned"
// @Router       /contacts/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, _ := auth.GetUserIDFromContext(r.Context())

	contactID, ok := parseContactID(w, r)
	if !ok {
		return
	}

	var req ContactUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	input := UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(birthdayLayout, *req.Birthday)
		if err != nil {
			respondError(w, "birthday must be in YYYY-MM-DD format", httputil.CodeValidationError, http.StatusBadRequest)
			return
		}
		input.Birthday = &birthday
	}

	updated, err := h.service.Update(r.Context(), ownerID, contactID, input)
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to update contact")
		return
	}

	logger.Info("contact updated", "contact_id", updated.ID)
	httputil.RespondJSON(w, toResponse(updated), http.StatusOK)
}

// Delete handles permanent contact deletion
// @Summary      Delete a contact
// @Tags         contacts
// @Param        id path string true "Contact ID"
// @Security     BearerAuth
// @Success      204
// @Failure      404 {object} httputil.ErrorResponse "Not found or not owned"
// @Router       /contacts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, _ := auth.GetUserIDFromContext(r.Context())

	contactID, ok := parseContactID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, contactID); err != nil {
		h.respondServiceError(w, logger, err, "failed to delete contact")
		return
	}

	logger.Info("contact deleted", "contact_id", contactID)
	w.WriteHeader(http.StatusNoContent)
}

// List handles paginated contact listing
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Param        page query int false "Page number (1-based)"
// @Param        page_size query int false "Page size"
// @Security     BearerAuth
// @Success      200 {object} PageResponse
// @Router       /contacts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, _ := auth.GetUserIDFromContext(r.Context())

	page, pageSize := queryPage(r)

	result, err := h.service.List(r.Context(), ownerID, page, pageSize)
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to list contacts")
		return
	}

	httputil.RespondJSON(w, toPageResponse(result), http.StatusOK)
}

// Search handles case-insensitive contact search
// @Summary      Search contacts
// @Description  Case-insensitive substring match over first name, last name and email.
// @Tags         contacts
// @Produce      json
// @Param        q query string true "Search query"
// @Param        page query int false "Page number (1-based)"
// @Param        page_size query int false "Page size"
// @Security     BearerAuth
// @Success      200 {object} PageResponse
// @Router       /contacts/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, _ := auth.GetUserIDFromContext(r.Context())

	page, pageSize := queryPage(r)
	query := r.URL.Query().Get("q")

	result, err := h.service.Search(r.Context(), ownerID, query, page, pageSize)
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to search contacts")
		return
	}

	httputil.RespondJSON(w, toPageResponse(result), http.StatusOK)
}

// Birthdays handles the upcoming-birthday query
// @Summary      Upcoming birthdays
// @Description  Contacts whose birthday (month/day) falls within the next N days, including year wraparound.
// @Tags         contacts
// @Produce      json
// @Param        days query int false "Window in days (default 7)"
// @Param        page query int false "Page number (1-based)"
// @Param        page_size query int false "Page size"
// @Security     BearerAuth
// @Success      200 {object} PageResponse
// @Router       /contacts/birthdays [get]
func (h *Handler) Birthdays(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, _ := auth.GetUserIDFromContext(r.Context())

	page, pageSize := queryPage(r)
	days := queryInt(r, "days", 0)

	result, err := h.service.UpcomingBirthdays(r.Context(), ownerID, days, page, pageSize)
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to get upcoming birthdays")
		return
	}

	httputil.RespondJSON(w, toPageResponse(result), http.StatusOK)
}

// respondServiceError maps service errors to HTTP responses in one place
func (h *Handler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, err error, internalMsg string) {
	switch {
	case errors.Is(err, ErrValidation):
		respondError(w, err.Error(), httputil.CodeValidationError, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		respondError(w, "contact not found", httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrDuplicateEmail):
		respondError(w, "contact with this email already exists", httputil.CodeContactEmailExists, http.StatusConflict)
	default:
		logger.Error(internalMsg, "error", err.Error())
		respondError(w, internalMsg, httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

func parseContactID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// Malformed ids get the same answer as missing ones
		respondError(w, "contact not found", httputil.CodeNotFound, http.StatusNotFound)
		return uuid.Nil, false
	}
	return contactID, true
}

func queryPage(r *http.Request) (int, int) {
	return queryInt(r, "page", 1), queryInt(r, "page_size", 0)
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func toResponse(c *Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  c.Birthday.Format(birthdayLayout),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toPageResponse(p *Page) PageResponse {
	items := make([]ContactResponse, len(p.Items))
	for i, c := range p.Items {
		items[i] = toResponse(c)
	}
	return PageResponse{
		Items:    items,
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}

func respondError(w http.ResponseWriter, message, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}
