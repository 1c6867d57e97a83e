package store

import "errors"

// StoreError represents a domain error from store operations.
//
// These are business errors (book not cached, invalid identifier) as
// opposed to infrastructure errors (disk failure, closed database),
// which are returned wrapped with their backend context instead.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// BookID is the book the error relates to (if applicable)
	BookID string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.BookID != "" {
		return e.Message + ": " + e.BookID
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested book is not cached
	ErrNotFound ErrorCode = iota

	// ErrInvalidArgument indicates invalid parameters were provided.
	// Examples: empty book ID, metadata and blob IDs that disagree.
	ErrInvalidArgument

	// ErrIOError indicates the backend failed to read or write
	ErrIOError

	// ErrClosed indicates the store has been closed
	ErrClosed
)

// NewNotFoundError creates a StoreError for a book that is not cached.
func NewNotFoundError(id string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: "book not cached",
		BookID:  id,
	}
}

// NewInvalidArgumentError creates a StoreError for invalid arguments.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewIOError creates a StoreError for backend read/write failures.
func NewIOError(message string, id string) *StoreError {
	return &StoreError{
		Code:    ErrIOError,
		Message: message,
		BookID:  id,
	}
}

// NewClosedError creates a StoreError for operations on a closed store.
func NewClosedError() *StoreError {
	return &StoreError{
		Code:    ErrClosed,
		Message: "store is closed",
	}
}

// IsNotFound reports whether err is a StoreError with ErrNotFound.
// Callers use this to translate absence into a fallback path rather
// than a failure.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == ErrNotFound
}
