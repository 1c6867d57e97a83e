package storetest

import (
	"testing"
	"time"

	"github.com/pagekeep/pagekeep/pkg/book"
	"github.com/pagekeep/pagekeep/pkg/store"
)

// StoreFactory creates a fresh store.Store instance for each test.
// The factory receives *testing.T so it can use t.TempDir() for stores
// that need filesystem paths and t.Cleanup() for teardown.
type StoreFactory func(t *testing.T) store.Store

// RunConformanceSuite runs the full conformance test suite against the
// provided store factory. Each test gets a fresh store instance to
// ensure isolation.
//
// The suite covers three categories:
//   - BookOps: put/get/delete round trips, overwrites, idempotence
//   - ListOps: listing, ordering, existence probes, clearing
//   - Consistency: the no-orphan invariant and argument validation
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("BookOps", func(t *testing.T) {
		runBookOpsTests(t, factory)
	})

	t.Run("ListOps", func(t *testing.T) {
		runListOpsTests(t, factory)
	})

	t.Run("Consistency", func(t *testing.T) {
		runConsistencyTests(t, factory)
	})
}

// testBook builds a matched metadata and blob pair for id. The data
// payload length is len(data); CachedAt is set to cachedAt so ordering
// tests can control it.
func testBook(id string, data []byte, cachedAt time.Time) (store.BookMetadata, store.BookBlob) {
	meta := store.BookMetadata{
		ID:            id,
		Title:         "Title of " + id,
		Author:        "Author of " + id,
		FileType:      book.FileTypeEPUB,
		CoverURL:      "https://covers.example.com/" + id + ".jpg",
		LastPageRead:  12,
		CachedAt:      cachedAt,
		FileSizeBytes: int64(len(data)),
	}
	blob := store.BookBlob{
		BookID:      id,
		Data:        data,
		CoverData:   []byte("cover-of-" + id),
		ContentType: book.FileTypeEPUB.ContentType(),
	}
	return meta, blob
}

// putTestBook stores a book and fails the test on error.
func putTestBook(t *testing.T, s store.Store, id string, data []byte) {
	t.Helper()

	meta, blob := testBook(id, data, time.Now().UTC().Truncate(time.Millisecond))
	if err := s.PutBook(t.Context(), meta, blob); err != nil {
		t.Fatalf("PutBook(%q) failed: %v", id, err)
	}
}
