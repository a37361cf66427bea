// Package apperrors defines the error values surfaced to API clients.
// Handlers convert any error to an AppError with From so responses never leak
// internal details.
package apperrors

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AppError is a client-facing error with a stable code and HTTP status.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	StatusCode int               `json:"-"`
	Internal   error             `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so wrapped copies still
// satisfy errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap copies sentinel and attaches internal as the cause.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage copies sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Validation wraps an ozzo-validation result, exposing per-field messages.
func Validation(err error) *AppError {
	out := Wrap(ErrValidation, err)
	var fields validation.Errors
	if errors.As(err, &fields) {
		out.Details = make(map[string]string, len(fields))
		for k, v := range fields {
			out.Details[k] = v.Error()
		}
		return out
	}
	out.Message = err.Error()
	return out
}

// From converts any error into an AppError, defaulting to ErrInternal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return Validation(err)
	}
	return Wrap(ErrInternal, err)
}

var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid request body", StatusCode: http.StatusBadRequest}
	ErrValidation   = &AppError{Code: "VALIDATION_FAILED", Message: "Validation failed", StatusCode: http.StatusBadRequest}
	ErrNotFound     = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConflict     = &AppError{Code: "CONFLICT", Message: "Resource conflicts with existing data", StatusCode: http.StatusConflict}
	ErrPrecondition = &AppError{Code: "PRECONDITION_FAILED", Message: "Operation cannot run on this data", StatusCode: http.StatusUnprocessableEntity}
	ErrInternal     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Catalog errors.
var (
	ErrDuplicateName = &AppError{Code: "DUPLICATE_NAME", Message: "An item with this name already exists", StatusCode: http.StatusConflict}
	ErrInputInUse    = &AppError{Code: "INPUT_IN_USE", Message: "Input is referenced by compositions", StatusCode: http.StatusConflict}
)

// Budget tree errors.
var (
	ErrPackageNotFound  = &AppError{Code: "PACKAGE_NOT_FOUND", Message: "Package not found", StatusCode: http.StatusNotFound}
	ErrSubgroupNotFound = &AppError{Code: "SUBGROUP_NOT_FOUND", Message: "Subgroup not found in package", StatusCode: http.StatusNotFound}
	ErrInstanceNotFound = &AppError{Code: "INSTANCE_NOT_FOUND", Message: "Composition instance not found", StatusCode: http.StatusNotFound}
)
