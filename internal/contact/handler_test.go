package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/contacts-api/internal/auth"
	"github.com/redmonkez12/contacts-api/internal/httputil"
	"github.com/redmonkez12/contacts-api/internal/logging"
)

func newTestRouter(store *fakeStore, ownerID uuid.UUID) *chi.Mux {
	handler := NewHandler(newTestService(store), logging.NewLogger(true))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), auth.UserIDContextKey, ownerID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/contacts", handler.Create)
	r.Get("/contacts", handler.List)
	r.Get("/contacts/{id}", handler.Get)
	r.Put("/contacts/{id}", handler.Update)
	r.Delete("/contacts/{id}", handler.Delete)

	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCreateContactEndpoint(t *testing.T) {
	ownerID := uuid.New()
	router := newTestRouter(newFakeStore(), ownerID)

	body := `{
		"first_name": "Alice",
		"last_name": "Smith",
		"email": "alice@example.com",
		"phone": "+420123456789",
		"birthday": "1992-03-14"
	}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created ContactResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "Alice", created.FirstName)
	assert.Equal(t, "1992-03-14", created.Birthday)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreateContactEndpointBadBirthday(t *testing.T) {
	router := newTestRouter(newFakeStore(), uuid.New())

	body := `{
		"first_name": "Alice",
		"last_name": "Smith",
		"email": "alice@example.com",
		"phone": "+420123456789",
		"birthday": "14.03.1992"
	}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeValidationError, decodeError(t, rec).Code)
}

func TestCreateContactEndpointDuplicate(t *testing.T) {
	ownerID := uuid.New()
	router := newTestRouter(newFakeStore(), ownerID)

	body := `{
		"first_name": "Alice",
		"last_name": "Smith",
		"email": "alice@example.com",
		"phone": "+420123456789",
		"birthday": "1992-03-14"
	}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(body))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, httputil.CodeContactEmailExists, decodeError(t, rec).Code)
}

func TestGetContactEndpointMalformedID(t *testing.T) {
	router := newTestRouter(newFakeStore(), uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/contacts/not-a-uuid", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httputil.CodeNotFound, decodeError(t, rec).Code)
}

func TestGetContactEndpointUnknownID(t *testing.T) {
	router := newTestRouter(newFakeStore(), uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/contacts/"+uuid.NewString(), nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateContactEndpointPartial(t *testing.T) {
	ownerID := uuid.New()
	store := newFakeStore()
	router := newTestRouter(store, ownerID)

	svc := newTestService(store)
	created, err := svc.Create(context.Background(), ownerID, validInput())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/contacts/"+created.ID.String(), strings.NewReader(`{"phone": "+420987654321"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var updated ContactResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, "+420987654321", updated.Phone)
	assert.Equal(t, "Alice", updated.FirstName)
}

func TestDeleteContactEndpoint(t *testing.T) {
	ownerID := uuid.New()
	store := newFakeStore()
	router := newTestRouter(store, ownerID)

	svc := newTestService(store)
	created, err := svc.Create(context.Background(), ownerID, validInput())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/contacts/"+created.ID.String(), nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/contacts/"+created.ID.String(), nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListContactsEndpoint(t *testing.T) {
	ownerID := uuid.New()
	store := newFakeStore()
	router := newTestRouter(store, ownerID)

	svc := newTestService(store)
	_, err := svc.Create(context.Background(), ownerID, validInput())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/contacts?page=1&page_size=10", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var page PageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 10, page.PageSize)
}
