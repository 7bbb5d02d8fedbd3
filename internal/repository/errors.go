package repository

import (
	"errors"
	"fmt"
	"time"

	"octofit/internal/models"
)

// Sentinel kinds for store errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate record")
	ErrUnknownField = errors.New("field is not queryable")
)

func notFound(kind Kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

func duplicate(kind Kind, field, value string) error {
	return fmt.Errorf("%w: %s with %s %q already exists", ErrDuplicate, kind, field, value)
}

// prepare assigns id and creation time when missing and validates the record.
func prepare(id *string, createdAt *time.Time, v interface{}) error {
	if *id == "" {
		*id = models.NewID()
	}
	if createdAt != nil && createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
	return models.Validate(v)
}
