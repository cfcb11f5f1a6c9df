package httputil

// Machine-readable error codes returned alongside the human message so
// clients don't have to parse error strings.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"
	CodeTooManyRequests    = "too_many_requests"
	CodeCooldownActive     = "cooldown_active"
	CodeNotFound           = "not_found"

	// Auth
	CodeInvalidAuthHeader         = "invalid_auth_header"
	CodeMissingAuth               = "missing_auth"
	CodeTokenExpired              = "token_expired"
	CodeInvalidToken              = "invalid_token"
	CodeInvalidTokenUserID        = "invalid_token_user_id"
	CodeSessionRevoked            = "session_revoked"
	CodeInvalidCredentials        = "invalid_credentials"
	CodeEmailNotVerified          = "email_not_verified"
	CodeRefreshTokenRequired      = "refresh_token_required"
	CodeInvalidRefreshToken       = "invalid_refresh_token"
	CodeVerificationTokenRequired = "verification_token_required"
	CodeVerificationFailed        = "verification_failed"
	CodeInvalidResetToken         = "invalid_reset_token"

	// Registration validation
	CodeEmailAlreadyExists = "email_already_exists"
	CodeEmailRequired      = "email_required"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodeUsernameRequired   = "username_required"
	CodePasswordRequired   = "password_required"
	CodePasswordTooShort   = "password_too_short"

	// Contacts
	CodeContactEmailExists = "contact_email_exists"
	CodeValidationError    = "validation_error"

	// Avatar upload
	CodeUnsupportedImage   = "unsupported_image_type"
	CodeImageTooLarge      = "image_too_large"
	CodeStorageUnavailable = "storage_unavailable"
)
