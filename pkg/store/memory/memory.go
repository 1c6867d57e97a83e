// Package memory implements store.Store on in-process maps.
//
// Nothing survives a restart. The backend exists for tests and for
// hosts that want cache semantics without persistence, and it doubles
// as the reference implementation for the conformance suite.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pagekeep/pagekeep/pkg/store"
)

// BookStore is a store.Store backed by in-process maps.
//
// A single mutex guards both maps, which is what makes every operation
// atomic across the metadata and blob tables.
type BookStore struct {
	mu     sync.RWMutex
	meta   map[string]store.BookMetadata
	blobs  map[string]store.BookBlob
	closed bool
}

// New creates an empty in-memory book store.
func New() *BookStore {
	return &BookStore{
		meta:  make(map[string]store.BookMetadata),
		blobs: make(map[string]store.BookBlob),
	}
}

// PutBook stores or replaces both rows for the book.
func (s *BookStore) PutBook(ctx context.Context, meta store.BookMetadata, blob store.BookBlob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meta.ID == "" {
		return store.NewInvalidArgumentError("book ID must not be empty")
	}
	if meta.ID != blob.BookID {
		return store.NewInvalidArgumentError("metadata and blob book IDs disagree")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.NewClosedError()
	}

	// Copy blob slices so later caller mutations cannot corrupt the store
	stored := store.BookBlob{
		BookID:      blob.BookID,
		Data:        append([]byte(nil), blob.Data...),
		ContentType: blob.ContentType,
	}
	if len(blob.CoverData) > 0 {
		stored.CoverData = append([]byte(nil), blob.CoverData...)
	}

	s.meta[meta.ID] = meta
	s.blobs[meta.ID] = stored
	return nil
}

// DeleteBook removes both rows. Unknown IDs are a no-op.
func (s *BookStore) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return store.NewInvalidArgumentError("book ID must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.NewClosedError()
	}

	delete(s.meta, id)
	delete(s.blobs, id)
	return nil
}

// GetMetadata returns a copy of the metadata row for id.
func (s *BookStore) GetMetadata(ctx context.Context, id string) (*store.BookMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.NewClosedError()
	}

	meta, exists := s.meta[id]
	if !exists {
		return nil, store.NewNotFoundError(id)
	}
	return &meta, nil
}

// GetBlob returns a copy of the blob row for id.
func (s *BookStore) GetBlob(ctx context.Context, id string) (*store.BookBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.NewClosedError()
	}

	blob, exists := s.blobs[id]
	if !exists {
		return nil, store.NewNotFoundError(id)
	}

	out := store.BookBlob{
		BookID:      blob.BookID,
		Data:        append([]byte(nil), blob.Data...),
		ContentType: blob.ContentType,
	}
	if len(blob.CoverData) > 0 {
		out.CoverData = append([]byte(nil), blob.CoverData...)
	}
	return &out, nil
}

// GetCover returns a copy of the cover image for id, or nil when the
// cached book has none.
func (s *BookStore) GetCover(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.NewClosedError()
	}

	blob, exists := s.blobs[id]
	if !exists {
		return nil, store.NewNotFoundError(id)
	}
	if len(blob.CoverData) == 0 {
		return nil, nil
	}
	return append([]byte(nil), blob.CoverData...), nil
}

// ListMetadata returns all metadata rows ordered by CachedAt then ID.
func (s *BookStore) ListMetadata(ctx context.Context) ([]store.BookMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.NewClosedError()
	}

	books := make([]store.BookMetadata, 0, len(s.meta))
	for _, meta := range s.meta {
		books = append(books, meta)
	}

	sort.Slice(books, func(i, j int) bool {
		if !books[i].CachedAt.Equal(books[j].CachedAt) {
			return books[i].CachedAt.Before(books[j].CachedAt)
		}
		return books[i].ID < books[j].ID
	})

	return books, nil
}

// HasBook reports whether the book is present.
func (s *BookStore) HasBook(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, store.NewClosedError()
	}

	_, exists := s.meta[id]
	return exists, nil
}

// Clear empties both tables.
func (s *BookStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.NewClosedError()
	}

	s.meta = make(map[string]store.BookMetadata)
	s.blobs = make(map[string]store.BookBlob)
	return nil
}

// Healthcheck reports whether the store is usable.
func (s *BookStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return store.NewClosedError()
	}
	return nil
}

// Close marks the store closed. Subsequent operations fail.
func (s *BookStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
