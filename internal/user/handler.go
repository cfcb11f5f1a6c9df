package user

import (
	"errors"
	"net/http"

	"github.com/redmonkez12/contacts-api/internal/authctx"
	"github.com/redmonkez12/contacts-api/internal/httputil"
	"github.com/redmonkez12/contacts-api/internal/logging"
)

// Handler contains HTTP handlers for profile endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Me returns the authenticated user's profile
// @Summary      Get current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} User
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := authctx.GetUserIDFromContext(r.Context())

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, profile, http.StatusOK)
}

// UpdateAvatar replaces the authenticated user's avatar image
// @Summary      Upload avatar
// @Description  Accepts a multipart form with an "avatar" file field. JPEG, PNG, GIF and WebP up to 5 MiB.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        avatar formData file true "Avatar image"
// @Security     BearerAuth
// @Success      200 {object} User
// @Failure      400 {object} httputil.ErrorResponse "Unsupported or oversized image"
// @Failure      502 {object} httputil.ErrorResponse "Storage unavailable"
// @Router       /users/me/avatar [patch]
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := authctx.GetUserIDFromContext(r.Context())

	// Cap the multipart parse as well, the service enforces the real limit
	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+1<<20)

	file, _, err := r.FormFile("avatar")
	if err != nil {
		httputil.RespondErrorWithCode(w, "avatar file is required", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	defer file.Close()

	updated, err := h.service.UpdateAvatar(r.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedImage):
			httputil.RespondErrorWithCode(w, "unsupported image format, use JPEG, PNG, GIF or WebP", httputil.CodeUnsupportedImage, http.StatusBadRequest)
		case errors.Is(err, ErrImageTooLarge):
			httputil.RespondErrorWithCode(w, "image must be at most 5 MiB", httputil.CodeImageTooLarge, http.StatusBadRequest)
		case errors.Is(err, ErrStorageUnavailable):
			logger.Error("avatar storage unavailable", "error", err.Error())
			httputil.RespondErrorWithCode(w, "avatar storage unavailable", httputil.CodeStorageUnavailable, http.StatusBadGateway)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("failed to update avatar", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update avatar", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("avatar updated", "user_id", userID)
	httputil.RespondJSON(w, updated, http.StatusOK)
}
