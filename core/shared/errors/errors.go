package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Request-stage errors (the backend is never contacted)
	ErrCodeAuthFailed       ErrorCode = "AUTH_FAILED"
	ErrCodeProfileNotFound  ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"

	// Backend-stage errors
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	ErrCodeExecutionFailed  ErrorCode = "EXECUTION_FAILED"

	// Gateway-internal errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// AppError represents a gateway error with code and context
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Status  int // HTTP status code
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new gateway error
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Status:  getHTTPStatus(code),
	}
}

// WrapError wraps an existing error with an error code and message
func WrapError(code ErrorCode, message string, err error) *AppError {
	return NewAppError(code, message, err)
}

// getHTTPStatus maps error codes to HTTP status codes.
// Backend execution failures are reported in-band with a 200 envelope,
// so ErrCodeExecutionFailed never reaches this mapping in practice.
func getHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeAuthFailed:
		return http.StatusUnauthorized
	case ErrCodeProfileNotFound:
		return http.StatusNotFound
	case ErrCodePermissionDenied:
		return http.StatusForbidden
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound checks if the error is a profile resolution error
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeProfileNotFound
	}
	return false
}

// IsPermissionDenied checks if the error is a policy rejection
func IsPermissionDenied(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodePermissionDenied
	}
	return false
}

// IsAuthFailed checks if the error is an authentication failure
func IsAuthFailed(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeAuthFailed
	}
	return false
}
