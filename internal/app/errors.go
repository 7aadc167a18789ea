package app

import (
	"errors"
	"fmt"
	"net/http"

	"placement/api/internal/approval"
	"placement/api/internal/auth"
	"placement/api/internal/authpw"
	"placement/api/internal/store"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// mapError translates service errors into the HTTP error envelope. Anything
// not recognised is a 500 and its text is not exposed.
func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}

	switch {
	case errors.Is(err, approval.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "Forbidden", nil
	case errors.Is(err, approval.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	case errors.Is(err, approval.ErrInvalidState):
		return http.StatusConflict, "INVALID_STATE", "Update has already been reviewed", nil
	case errors.Is(err, approval.ErrValidation):
		if field, ok := approval.FieldError(err); ok {
			return http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), map[string]any{"field": field}
		}
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil
	case errors.Is(err, authpw.ErrEmailExists), errors.Is(err, store.ErrDuplicateEmail):
		return http.StatusConflict, "EMAIL_EXISTS", "User with this email already exists", nil
	case errors.Is(err, authpw.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil
	case errors.Is(err, authpw.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", nil
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
