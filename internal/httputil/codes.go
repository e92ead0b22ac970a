package httputil

// Machine-readable error codes returned alongside error messages.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"

	CodeEmailRequired      = "email_required"
	CodePasswordRequired   = "password_required"
	CodePasswordTooShort   = "password_too_short"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodeEmailAlreadyExists = "email_already_exists"

	CodeUserNotFound       = "user_not_found"
	CodeInvalidCredentials = "invalid_credentials"

	CodeMissingAuth       = "missing_auth"
	CodeInvalidAuthHeader = "invalid_auth_header"
	CodeInvalidToken      = "invalid_token"
	CodeTokenExpired      = "token_expired"
	CodeTokenNotFound     = "token_not_found"
	CodeTokenIDRequired   = "token_id_required"

	CodeValidationError   = "validation_error"
	CodeProfileNotFound   = "profile_not_found"
	CodeProfileExists     = "profile_already_exists"
	CodeMobileAlreadyUsed = "mobile_already_used"
)
