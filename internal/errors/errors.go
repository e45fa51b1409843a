package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewRequestError creates a new request error for a failed HTTP call.
// A status of zero means the request never produced a response.
func NewRequestError(operation string, status int, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeRequest,
		Message: fmt.Sprintf("request failed: %s", operation),
		Code:    "REQUEST_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
			"status":    status,
		},
	}
}

// NewConflictError creates a new conflict error for a duplicate rejected
// by the remote service
func NewConflictError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, identifier),
		Code:    "CONFLICT",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
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

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// IsRetryable reports whether a failed call is worth repeating. Only
// request errors qualify, and only when the response was a server-side
// failure, a rate limit, or no response at all. Validation, not-found
// and conflict errors are deterministic and never retried.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	if !appErr.IsType(ErrorTypeRequest) {
		return false
	}
	status := appErr.StatusCode()
	return status == 0 || status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
