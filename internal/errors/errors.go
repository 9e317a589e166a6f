// Package errors defines the service error taxonomy shared by the storage,
// service, and HTTP layers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeValidation          Code = "VALIDATION"
	CodeStoreUnavailable    Code = "STORE_UNAVAILABLE"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeInternal            Code = "INTERNAL"
	CodePersistenceDegraded Code = "PERSISTENCE_DEGRADED"
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeInvalidToken        Code = "INVALID_TOKEN"
)

// ServiceError carries a failure class, a caller-facing message, and the HTTP
// status the transport layer should use.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a key/value detail and returns the error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NotFound reports that the named record does not exist. This is a normal
// outcome for lookups; callers render it, they do not log it.
func NotFound(resource, id string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s %s not found", resource, id),
		HTTPStatus: http.StatusNotFound,
	}
}

// Validation reports invalid input rejected before any store call.
func Validation(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// StoreUnavailable reports a failure to reach the document store. It is always
// surfaced to the caller; write-path data loss must never be silent.
func StoreUnavailable(err error) *ServiceError {
	return &ServiceError{
		Code:       CodeStoreUnavailable,
		Message:    "document store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// Unauthorized reports a missing or failed authentication.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "authentication required"
	}
	return &ServiceError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken reports a malformed or expired session token.
func InvalidToken(err error) *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidToken,
		Message:    "invalid session token",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

// Internal reports an unexpected failure.
func Internal(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// PersistenceDegraded reports that a session snapshot could not be saved or
// restored. It is only ever logged; the session continues memory-only.
func PersistenceDegraded(err error) *ServiceError {
	return &ServiceError{
		Code:       CodePersistenceDegraded,
		Message:    "session persistence degraded",
		HTTPStatus: http.StatusOK,
		Err:        err,
	}
}

// RateLimited reports that the client exceeded its request budget.
func RateLimited() *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimited,
		Message:    "rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// GetServiceError returns the ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// IsNotFound reports whether err is a not-found service error.
func IsNotFound(err error) bool {
	se := GetServiceError(err)
	return se != nil && se.Code == CodeNotFound
}

// IsValidation reports whether err is a validation service error.
func IsValidation(err error) bool {
	se := GetServiceError(err)
	return se != nil && se.Code == CodeValidation
}

// IsStoreUnavailable reports whether err is a store-availability error.
func IsStoreUnavailable(err error) bool {
	se := GetServiceError(err)
	return se != nil && se.Code == CodeStoreUnavailable
}
