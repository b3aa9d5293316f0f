package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeCSRFCheckFailed ErrorCode = "CSRF_CHECK_FAILED"
	ErrCodeInvalidPin      ErrorCode = "INVALID_PIN"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Event lifecycle
	ErrCodeEventNotJoinable ErrorCode = "EVENT_NOT_JOINABLE"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Object storage
	ErrCodeStorageSignFailed   ErrorCode = "STORAGE_SIGN_FAILED"
	ErrCodeStorageCheckFailed  ErrorCode = "STORAGE_CHECK_FAILED"
	ErrCodeStorageDeleteFailed ErrorCode = "STORAGE_DELETE_FAILED"

	// Internal
	ErrCodeDBWriteFailed ErrorCode = "DB_WRITE_FAILED"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase      ErrorCode = "DATABASE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func CSRFCheckFailed() *AppError {
	return New(ErrCodeCSRFCheckFailed, "CSRF check failed for cookie-authenticated request")
}

func InvalidPin() *AppError {
	return New(ErrCodeInvalidPin, "Event PIN is missing or incorrect")
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func EventNotJoinable(status string) *AppError {
	return New(ErrCodeEventNotJoinable, fmt.Sprintf("Event is not joinable in status %q", status))
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

func StorageSignFailed(cause error) *AppError {
	return Wrap(ErrCodeStorageSignFailed, "Failed to create signed storage URL", cause)
}

func StorageCheckFailed(cause error) *AppError {
	return Wrap(ErrCodeStorageCheckFailed, "Failed to verify object in storage", cause)
}

func StorageDeleteFailed(cause error) *AppError {
	return Wrap(ErrCodeStorageDeleteFailed, "Failed to delete object from storage", cause)
}

func DBWriteFailed(message string) *AppError {
	return New(ErrCodeDBWriteFailed, message)
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
