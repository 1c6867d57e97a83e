package bookcache

import (
	"context"

	"github.com/pagekeep/pagekeep/pkg/book"
	"github.com/pagekeep/pagekeep/pkg/store"
)

// GetOfflineFile returns the cached file for a book.
//
// The second return reports whether the book is cached; asking for a
// book that was never saved is not an error. An error means the store
// itself failed.
func (m *Manager) GetOfflineFile(ctx context.Context, id string) (*book.OfflineFile, bool, error) {
	blob, err := m.store.GetBlob(ctx, id)
	if store.IsNotFound(err) {
		if m.metrics != nil {
			m.metrics.RecordBlobMiss()
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapError(KindTransaction, id, err)
	}

	if m.metrics != nil {
		m.metrics.RecordBlobHit()
	}
	return &book.OfflineFile{
		Data:        blob.Data,
		ContentType: blob.ContentType,
	}, true, nil
}

// GetCover returns the cached cover image for a book.
//
// The second return is false both when the book is not cached and when
// it was cached without a cover.
func (m *Manager) GetCover(ctx context.Context, id string) ([]byte, bool, error) {
	cover, err := m.store.GetCover(ctx, id)
	if store.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapError(KindTransaction, id, err)
	}
	if len(cover) == 0 {
		return nil, false, nil
	}
	return cover, true, nil
}

// IsOffline reports whether the book has a cached copy. Answered from
// the in-memory inventory; the store is not consulted.
func (m *Manager) IsOffline(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byID[id]
	return ok
}

// IsDownloading reports whether a save for the book is currently
// fetching its file.
func (m *Manager) IsDownloading(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.downloading[id]
	return ok
}

// OfflineBooks returns a snapshot of all cached books, ordered by when
// they were cached, oldest first. The caller owns the returned slice.
func (m *Manager) OfflineBooks() []store.BookMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]store.BookMetadata, len(m.books))
	copy(books, m.books)
	return books
}

// TotalStorageUsed returns the summed size in bytes of all cached book
// files. Recomputed from the inventory on every call, never tracked
// incrementally.
func (m *Manager) TotalStorageUsed() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, b := range m.books {
		total += b.FileSizeBytes
	}
	return total
}
