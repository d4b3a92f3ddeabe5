package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the repository-level miss. Services translate it into their
// own typed not-found errors; it must never be conflated with access denial.
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFoundError reports whether err represents a record-not-found miss.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
