package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrMalformedRecord is returned when a stored record fails validation on read.
	ErrMalformedRecord = errors.New("malformed record")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsMalformedRecord(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}
