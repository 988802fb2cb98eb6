package entry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no entry exists for an id.
	ErrNotFound = errors.New("entry not found")

	// ErrUnauthorized is returned when the declared owner does not match the stored owner.
	ErrUnauthorized = errors.New("unauthorized")
)

// StorageError reports a failure of the persistence layer during an operation.
// It is fatal to the operation and never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError returns an error for id that wraps ErrNotFound.
func NotFoundError(id uint64) error {
	return fmt.Errorf("entry %d: %w", id, ErrNotFound)
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
