package errs

import (
	"errors"
	"fmt"

	"github.com/Astemirdum/book-catalog/pkg/validate"
)

var (
	ErrNotFound        = errors.New("book not found")
	ErrAlreadyExists   = errors.New("book already exists")
	ErrAlreadyBorrowed = errors.New("book is already borrowed")
	ErrNotBorrowed     = errors.New("book is not borrowed")
	ErrNoCriteria      = errors.New("at least one search criterion is required")
	ErrISBNRequired    = errors.New("isbn is required")

	ErrPersistence = errors.New("persistence failure")

	ErrMetadataNotFound   = errors.New("isbn not found in metadata service")
	ErrMetadataService    = errors.New("metadata service error")
	ErrMetadataIncomplete = errors.New("metadata incomplete")
	ErrConnectivity       = errors.New("metadata service unreachable")
)

// Persistence marks err as a storage failure while keeping the driver error in the chain.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

type ValidationErrorResponse struct {
	Message string                `json:"message"`
	Errors  []validate.FieldError `json:"errors"`
}
