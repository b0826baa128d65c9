package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the API.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError is the application error type. Every error that reaches the
// request boundary is rendered into the standard failure envelope; none
// are fatal to the process.
type AppError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string][]string
	Err     error
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

// NewValidationError reports missing or malformed request fields.
// fields maps a field name to its messages and may be nil.
func NewValidationError(message string, fields map[string][]string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnprocessableEntity,
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewUnauthenticatedError reports a missing, invalid or expired credential.
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnauthorized,
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

// NewForbiddenError reports an authenticated caller acting outside its
// permissions.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusForbidden,
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewNotFoundError reports a reference to a nonexistent resource.
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Status:  fiber.StatusNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewConflictError reports a duplicate unique field.
func NewConflictError(message string, fields map[string][]string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnprocessableEntity,
		Code:    CodeConflict,
		Message: message,
		Fields:  fields,
	}
}

// NewInvalidRefreshTokenError reports an unknown, expired or
// already-rotated refresh credential.
func NewInvalidRefreshTokenError() *AppError {
	return &AppError{
		Status:  fiber.StatusUnauthorized,
		Code:    CodeInvalidRefreshToken,
		Message: "Invalid refresh token",
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *AppError {
	return &AppError{
		Status:  fiber.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
