package errors

import (
	"fmt"
	"net/http"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryClient ErrorCategory = "client"
	CategoryServer ErrorCategory = "server"
)

// Error codes form a closed set; every AppError carries exactly one of these.
const (
	// Input validation (4xx)
	CodeFieldRequired   = "FIELD_REQUIRED"
	CodeInvalidEmail    = "INVALID_EMAIL"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeBadRequest      = "BAD_REQUEST"
	CodeMissingHeader   = "MISSING_HEADER"

	// Authentication
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeRefreshTokenMismatch = "REFRESH_TOKEN_MISMATCH"
	CodeUnauthenticated      = "UNAUTHENTICATED"

	// Authorization
	CodeForbidden    = "FORBIDDEN"
	CodeAccessDenied = "ACCESS_DENIED"

	// Resources
	CodeDuplicateEmail = "DUPLICATE_EMAIL"
	CodeNotFound       = "NOT_FOUND"

	// Server errors (5xx)
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Category   ErrorCategory `json:"-"`
	HTTPStatus int           `json:"-"`
	Cause      error         `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause sets the underlying cause of the error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// New creates a new AppError
func New(code string, message string, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Category:   category,
		HTTPStatus: httpStatus,
	}
}

// Validation error constructors

func FieldRequired(field string) *AppError {
	return New(CodeFieldRequired, fmt.Sprintf("%s is required", field), CategoryClient, http.StatusBadRequest)
}

func InvalidEmail() *AppError {
	return New(CodeInvalidEmail, "Invalid email format", CategoryClient, http.StatusBadRequest)
}

func InvalidPassword(detail string) *AppError {
	return New(CodeInvalidPassword, detail, CategoryClient, http.StatusBadRequest)
}

func BadRequest(detail string) *AppError {
	return New(CodeBadRequest, detail, CategoryClient, http.StatusBadRequest)
}

func MissingHeader(name string) *AppError {
	return New(CodeMissingHeader, fmt.Sprintf("Missing required header: %s", name), CategoryClient, http.StatusBadRequest)
}

// Authentication error constructors

func InvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid email or password", CategoryClient, http.StatusUnauthorized)
}

func InvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or malformed token", CategoryClient, http.StatusUnauthorized)
}

func TokenExpired() *AppError {
	return New(CodeTokenExpired, "Token has expired", CategoryClient, http.StatusUnauthorized)
}

func RefreshTokenMismatch() *AppError {
	return New(CodeRefreshTokenMismatch, "Refresh token does not match", CategoryClient, http.StatusUnauthorized)
}

func Unauthenticated() *AppError {
	return New(CodeUnauthenticated, "Authentication required", CategoryClient, http.StatusUnauthorized)
}

// Authorization error constructors

func Forbidden(detail string) *AppError {
	return New(CodeForbidden, detail, CategoryClient, http.StatusForbidden)
}

func AccessDenied() *AppError {
	return New(CodeAccessDenied, "Access denied", CategoryClient, http.StatusForbidden)
}

// Resource error constructors

func DuplicateEmail() *AppError {
	return New(CodeDuplicateEmail, "Email already exists", CategoryClient, http.StatusConflict)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), CategoryClient, http.StatusNotFound)
}

// Server error constructors

func InternalError(detail string) *AppError {
	return New(CodeInternalError, detail, CategoryServer, http.StatusInternalServerError)
}

// IsClientError returns true if the error is a client error
func IsClientError(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Category == CategoryClient
}

// IsServerError returns true if the error is a server error
func IsServerError(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Category == CategoryServer
}

// FromError returns err as an *AppError, wrapping unknown errors as an
// internal error so raw collaborator failures never reach a client unmapped.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return InternalError("an unexpected error occurred").WithCause(err)
}
