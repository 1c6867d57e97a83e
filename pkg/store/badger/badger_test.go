package badger_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagekeep/pagekeep/pkg/book"
	"github.com/pagekeep/pagekeep/pkg/store"
	"github.com/pagekeep/pagekeep/pkg/store/badger"
	"github.com/pagekeep/pagekeep/pkg/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) store.Store {
		dbPath := filepath.Join(t.TempDir(), "books.db")
		s, err := badger.New(dbPath)
		if err != nil {
			t.Fatalf("badger.New() failed: %v", err)
		}
		t.Cleanup(func() {
			s.Close()
		})
		return s
	})
}

func TestConformanceInMemory(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) store.Store {
		s, err := badger.NewWithOptions(badger.Options{InMemory: true})
		if err != nil {
			t.Fatalf("badger.NewWithOptions() failed: %v", err)
		}
		t.Cleanup(func() {
			s.Close()
		})
		return s
	})
}

// TestPersistenceAcrossReopen verifies that cached books survive closing
// and reopening the database, the way they must survive an app restart.
func TestPersistenceAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "books.db")
	ctx := context.Background()

	data := []byte("persistent book content")
	cover := []byte("persistent cover")

	// Phase 1: store a book and close cleanly
	{
		s, err := badger.New(dbPath)
		if err != nil {
			t.Fatalf("badger.New() failed: %v", err)
		}

		meta := store.BookMetadata{
			ID:            "bk-restart",
			Title:         "Survives Restarts",
			FileType:      book.FileTypePDF,
			CachedAt:      time.Now().UTC().Truncate(time.Millisecond),
			FileSizeBytes: int64(len(data)),
		}
		blob := store.BookBlob{
			BookID:      "bk-restart",
			Data:        data,
			CoverData:   cover,
			ContentType: book.FileTypePDF.ContentType(),
		}
		if err := s.PutBook(ctx, meta, blob); err != nil {
			t.Fatalf("PutBook() failed: %v", err)
		}

		if err := s.Close(); err != nil {
			t.Fatalf("Close() failed: %v", err)
		}
	}

	// Phase 2: reopen and verify both rows are intact
	{
		s, err := badger.New(dbPath)
		if err != nil {
			t.Fatalf("badger.New() after reopen failed: %v", err)
		}
		defer s.Close()

		gotMeta, err := s.GetMetadata(ctx, "bk-restart")
		if err != nil {
			t.Fatalf("GetMetadata() after reopen failed: %v", err)
		}
		if gotMeta.Title != "Survives Restarts" {
			t.Errorf("Title = %q after reopen", gotMeta.Title)
		}
		if gotMeta.FileSizeBytes != int64(len(data)) {
			t.Errorf("FileSizeBytes = %d after reopen, want %d", gotMeta.FileSizeBytes, len(data))
		}

		gotBlob, err := s.GetBlob(ctx, "bk-restart")
		if err != nil {
			t.Fatalf("GetBlob() after reopen failed: %v", err)
		}
		if !bytes.Equal(gotBlob.Data, data) {
			t.Error("blob data corrupted across reopen")
		}
		if !bytes.Equal(gotBlob.CoverData, cover) {
			t.Error("cover data corrupted across reopen")
		}
	}
}
