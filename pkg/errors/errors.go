package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the catalog error taxonomy. Every AppError wraps exactly
// one of these so callers can branch with errors.Is.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")
	ErrBusinessRule   = errors.New("business rule violated")
	ErrInfrastructure = errors.New("infrastructure failure")
	ErrInternal       = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a missing entity.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error for malformed or out-of-range input.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// DuplicateTitle creates the business-rule error raised when a movie title is
// already taken. It matches both ErrBusinessRule and ErrConflict.
func DuplicateTitle(title string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_TITLE",
		Message: fmt.Sprintf("a movie titled %q already exists", title),
		Status:  http.StatusConflict,
		Err:     fmt.Errorf("%w: %w", ErrBusinessRule, ErrConflict),
	}
}

// BusinessRule creates a 422 error for a violated domain rule.
func BusinessRule(message string) *AppError {
	return &AppError{
		Code:    "BUSINESS_RULE_VIOLATION",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrBusinessRule,
	}
}

// Infrastructure creates a 503 error for a failing store or cache backend.
// The cause stays reachable through errors.Is / errors.As.
func Infrastructure(component string, err error) *AppError {
	return &AppError{
		Code:    "INFRASTRUCTURE_ERROR",
		Message: fmt.Sprintf("%s unavailable", component),
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrInfrastructure, err),
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrInternal, err),
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrBusinessRule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInfrastructure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
