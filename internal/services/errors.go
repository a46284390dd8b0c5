package services

import (
	"errors"

	"github.com/monocle-dev/tracker/internal/apperr"
	"gorm.io/gorm"
)

// lookupError maps a failed single-record lookup to NotFound, and anything
// else to an internal error.
func lookupError(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Internal("Database error", err)
}

func storeError(message string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(message, err)
}
