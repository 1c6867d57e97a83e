package bookcache

import (
	"errors"
	"fmt"
)

// ErrorKind classifies what went wrong during a cache operation, so
// hosts can pick the right reaction: fix the input, wait for
// connectivity, retry the download, or surface a storage problem.
type ErrorKind int

const (
	// KindInvalidInput indicates the book descriptor failed validation.
	KindInvalidInput ErrorKind = iota

	// KindOffline indicates the save was refused because the device
	// has no connectivity. Nothing was fetched or written.
	KindOffline

	// KindNetwork indicates the book file could not be downloaded.
	KindNetwork

	// KindTransaction indicates the store rejected a read or write.
	KindTransaction
)

// String returns the kind as a stable snake_case token, usable both in
// error messages and as a metric label.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindOffline:
		return "offline"
	case KindNetwork:
		return "network"
	case KindTransaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// CacheError is the error type returned by Manager operations.
type CacheError struct {
	// Kind is the error category
	Kind ErrorKind

	// BookID is the book the operation was acting on (if applicable)
	BookID string

	// Err is the underlying cause
	Err error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	if e.BookID != "" {
		return fmt.Sprintf("%s: book %s: %v", e.Kind, e.BookID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// wrapError builds a CacheError unless err already is one, in which
// case the original classification is preserved.
func wrapError(kind ErrorKind, bookID string, err error) error {
	var ce *CacheError
	if errors.As(err, &ce) {
		return err
	}
	return &CacheError{Kind: kind, BookID: bookID, Err: err}
}

// KindOf extracts the ErrorKind from an error returned by a Manager
// operation. The second return is false when err is not a CacheError.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CacheError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// IsOfflineError reports whether err is a save refused for lack of
// connectivity.
func IsOfflineError(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindOffline
}

// IsNetworkError reports whether err is a failed download.
func IsNetworkError(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNetwork
}
