package approval

import (
	"errors"
	"fmt"

	"placement/api/internal/company"
	"placement/api/internal/store"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

// notFound maps a store miss onto ErrNotFound and wraps anything else as an
// infrastructure failure.
func notFound(err error, what, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func validation(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// FieldError returns the offending field name of a validation failure, if
// it names one.
func FieldError(err error) (string, bool) {
	var verr *company.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		return verr.Field, true
	}
	return "", false
}
