package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies application errors so the HTTP layer can pick a status code
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// AppError is the error type returned by services for conditions the client
// caused. Anything that is not an AppError is treated as unexpected.
type AppError struct {
	Kind    ErrorKind
	Message string
	// Errors holds per-field messages for validation failures
	Errors []string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string, errs ...string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Errors: errs}
}

func NewNotFoundError(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewConflictError(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

// IsKind reports whether err wraps an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// APIError represents the standardized error body for the API:
// {"error": {"message": "...", "status": 404}}
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
}

// ErrorResponse wraps APIError under the "error" key
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ValidationErrorResponse is returned for request validation failures
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// Error code constants
const (
	ErrBadRequest     = "BAD_REQUEST"
	ErrUnauthorized   = "UNAUTHORIZED"
	ErrForbidden      = "FORBIDDEN"
	ErrNotFound       = "NOT_FOUND"
	ErrConflict       = "CONFLICT"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrRateLimited    = "RATE_LIMIT_EXCEEDED"

	// OAuth/Auth errors (maintain RFC 6749 compatibility)
	ErrInvalidRequest       = "invalid_request"
	ErrInvalidClient        = "invalid_client"
	ErrInvalidGrant         = "invalid_grant"
	ErrInvalidToken         = "invalid_token"
	ErrUnsupportedGrantType = "unsupported_grant_type"
	ErrAuthorizationNeeded  = "authorization_required"
)

// NewAPIError creates a new API error body with the given status and message
func NewAPIError(status int, message string, code ...string) ErrorResponse {
	body := APIError{Message: message, Status: status}
	if len(code) > 0 {
		body.Code = code[0]
	}
	return ErrorResponse{Error: body}
}

// OAuth2Error represents an OAuth2 error response (RFC 6749)
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// NewOAuth2Error creates a new OAuth2 error response
func NewOAuth2Error(error, description string) OAuth2Error {
	return OAuth2Error{
		Error:            error,
		ErrorDescription: description,
	}
}
