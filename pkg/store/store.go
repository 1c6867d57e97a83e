// Package store defines the persistence contract for the offline book
// cache: a metadata table and a blob table kept consistent under a
// single transaction boundary.
//
// Three implementations are provided:
//   - badger: embedded key-value store, the default durable backend
//   - sqlite: relational backend for hosts already shipping SQLite
//   - memory: map-backed backend for tests and ephemeral use
//
// All implementations must pass the conformance suite in storetest.
package store

import "context"

// Store persists cached books across restarts.
//
// The two tables move in lockstep: PutBook writes both rows atomically,
// DeleteBook removes both atomically, and Clear empties both atomically.
// A reader must never observe a metadata row without its blob row or a
// blob row without its metadata row, including after a crash.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// PutBook writes the metadata row and the blob row in one
	// transaction. An existing book with the same ID is fully replaced;
	// nothing of the prior copy survives. On error the prior copy (if
	// any) is left untouched.
	PutBook(ctx context.Context, meta BookMetadata, blob BookBlob) error

	// DeleteBook removes both rows in one transaction. Deleting an ID
	// that is not cached is a no-op, not an error.
	DeleteBook(ctx context.Context, id string) error

	// GetMetadata returns the metadata row for id.
	// Returns a StoreError with ErrNotFound when the book is not cached.
	GetMetadata(ctx context.Context, id string) (*BookMetadata, error)

	// GetBlob returns the blob row for id.
	// Returns a StoreError with ErrNotFound when the book is not cached.
	GetBlob(ctx context.Context, id string) (*BookBlob, error)

	// GetCover returns just the cover image for id, without loading the
	// book file. A cached book that has no cover returns (nil, nil).
	// Returns a StoreError with ErrNotFound when the book is not cached.
	GetCover(ctx context.Context, id string) ([]byte, error)

	// ListMetadata returns every metadata row ordered by CachedAt,
	// oldest first, with ID as tiebreaker. Blob data is never loaded.
	ListMetadata(ctx context.Context) ([]BookMetadata, error)

	// HasBook reports whether a metadata row exists for id.
	// Absence is (false, nil), not an error.
	HasBook(ctx context.Context, id string) (bool, error)

	// Clear removes every row from both tables in one transaction.
	Clear(ctx context.Context) error

	// Healthcheck verifies the backend is reachable and writable.
	Healthcheck(ctx context.Context) error

	// Close releases the backend. The store must not be used afterwards.
	Close() error
}
