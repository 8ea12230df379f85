package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrStore wraps every failure coming out of the database layer.
	ErrStore = errors.New("store error")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = fmt.Errorf("%w: record not found", ErrStore)
)

func storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
