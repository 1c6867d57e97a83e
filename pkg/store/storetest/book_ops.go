package storetest

import (
	"bytes"
	"testing"
	"time"

	"github.com/pagekeep/pagekeep/pkg/book"
	"github.com/pagekeep/pagekeep/pkg/store"
)

// runBookOpsTests runs all single-book operation conformance tests.
func runBookOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("PutAndGetRoundTrip", func(t *testing.T) { testPutAndGetRoundTrip(t, factory) })
	t.Run("PutOverwritesPriorCopy", func(t *testing.T) { testPutOverwritesPriorCopy(t, factory) })
	t.Run("PutWithoutCoverClearsStaleCover", func(t *testing.T) { testPutWithoutCoverClearsStaleCover(t, factory) })
	t.Run("GetMetadataNotFound", func(t *testing.T) { testGetMetadataNotFound(t, factory) })
	t.Run("GetBlobNotFound", func(t *testing.T) { testGetBlobNotFound(t, factory) })
	t.Run("GetCover", func(t *testing.T) { testGetCover(t, factory) })
	t.Run("DeleteRemovesBothRows", func(t *testing.T) { testDeleteRemovesBothRows(t, factory) })
	t.Run("DeleteIsIdempotent", func(t *testing.T) { testDeleteIsIdempotent(t, factory) })
	t.Run("Healthcheck", func(t *testing.T) { testHealthcheck(t, factory) })
}

func testPutAndGetRoundTrip(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	data := []byte("the quick brown fox jumps over the lazy dog")
	cachedAt := time.Now().UTC().Truncate(time.Millisecond)
	meta, blob := testBook("bk-roundtrip", data, cachedAt)

	if err := s.PutBook(ctx, meta, blob); err != nil {
		t.Fatalf("PutBook() failed: %v", err)
	}

	gotMeta, err := s.GetMetadata(ctx, "bk-roundtrip")
	if err != nil {
		t.Fatalf("GetMetadata() failed: %v", err)
	}
	if gotMeta.ID != meta.ID {
		t.Errorf("ID = %q, want %q", gotMeta.ID, meta.ID)
	}
	if gotMeta.Title != meta.Title {
		t.Errorf("Title = %q, want %q", gotMeta.Title, meta.Title)
	}
	if gotMeta.FileType != book.FileTypeEPUB {
		t.Errorf("FileType = %q, want %q", gotMeta.FileType, book.FileTypeEPUB)
	}
	if gotMeta.FileSizeBytes != int64(len(data)) {
		t.Errorf("FileSizeBytes = %d, want %d", gotMeta.FileSizeBytes, len(data))
	}
	if !gotMeta.CachedAt.Equal(cachedAt) {
		t.Errorf("CachedAt = %v, want %v", gotMeta.CachedAt, cachedAt)
	}

	gotBlob, err := s.GetBlob(ctx, "bk-roundtrip")
	if err != nil {
		t.Fatalf("GetBlob() failed: %v", err)
	}
	if !bytes.Equal(gotBlob.Data, data) {
		t.Error("blob data does not round trip")
	}
	if !bytes.Equal(gotBlob.CoverData, blob.CoverData) {
		t.Error("cover data does not round trip")
	}
	if gotBlob.ContentType != blob.ContentType {
		t.Errorf("ContentType = %q, want %q", gotBlob.ContentType, blob.ContentType)
	}
}

func testPutOverwritesPriorCopy(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	first := []byte("first edition")
	second := []byte("second edition, substantially revised")

	putTestBook(t, s, "bk-overwrite", first)

	meta, blob := testBook("bk-overwrite", second, time.Now().UTC().Truncate(time.Millisecond))
	meta.Title = "Revised Title"
	if err := s.PutBook(ctx, meta, blob); err != nil {
		t.Fatalf("second PutBook() failed: %v", err)
	}

	gotMeta, err := s.GetMetadata(ctx, "bk-overwrite")
	if err != nil {
		t.Fatalf("GetMetadata() failed: %v", err)
	}
	if gotMeta.Title != "Revised Title" {
		t.Errorf("Title = %q, want the second save's title", gotMeta.Title)
	}
	if gotMeta.FileSizeBytes != int64(len(second)) {
		t.Errorf("FileSizeBytes = %d, want %d", gotMeta.FileSizeBytes, len(second))
	}

	gotBlob, err := s.GetBlob(ctx, "bk-overwrite")
	if err != nil {
		t.Fatalf("GetBlob() failed: %v", err)
	}
	if !bytes.Equal(gotBlob.Data, second) {
		t.Error("blob still holds the first save's data")
	}

	// Still exactly one row pair
	books, err := s.ListMetadata(ctx)
	if err != nil {
		t.Fatalf("ListMetadata() failed: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("ListMetadata() returned %d rows, want 1", len(books))
	}
}

func testPutWithoutCoverClearsStaleCover(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	putTestBook(t, s, "bk-cover", []byte("with cover"))

	meta, blob := testBook("bk-cover", []byte("without cover"), time.Now().UTC())
	blob.CoverData = nil
	if err := s.PutBook(ctx, meta, blob); err != nil {
		t.Fatalf("PutBook() without cover failed: %v", err)
	}

	gotBlob, err := s.GetBlob(ctx, "bk-cover")
	if err != nil {
		t.Fatalf("GetBlob() failed: %v", err)
	}
	if len(gotBlob.CoverData) != 0 {
		t.Error("stale cover survived a re-save without cover")
	}
}

func testGetMetadataNotFound(t *testing.T, factory StoreFactory) {
	s := factory(t)

	_, err := s.GetMetadata(t.Context(), "bk-missing")
	if err == nil {
		t.Fatal("GetMetadata() on missing book should fail")
	}
	if !store.IsNotFound(err) {
		t.Errorf("error %v should be a not-found StoreError", err)
	}
}

func testGetBlobNotFound(t *testing.T, factory StoreFactory) {
	s := factory(t)

	_, err := s.GetBlob(t.Context(), "bk-missing")
	if err == nil {
		t.Fatal("GetBlob() on missing book should fail")
	}
	if !store.IsNotFound(err) {
		t.Errorf("error %v should be a not-found StoreError", err)
	}
}

func testGetCover(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	_, err := s.GetCover(ctx, "bk-missing")
	if !store.IsNotFound(err) {
		t.Errorf("GetCover() on missing book: err = %v, want not-found", err)
	}

	meta, blob := testBook("bk-with-cover", []byte("illustrated"), time.Now().UTC())
	if err := s.PutBook(ctx, meta, blob); err != nil {
		t.Fatalf("PutBook() failed: %v", err)
	}

	cover, err := s.GetCover(ctx, "bk-with-cover")
	if err != nil {
		t.Fatalf("GetCover() failed: %v", err)
	}
	if !bytes.Equal(cover, blob.CoverData) {
		t.Error("cover does not round trip")
	}

	// A cached book without a cover is found, with a nil cover
	meta, blob = testBook("bk-no-cover", []byte("plain text"), time.Now().UTC())
	blob.CoverData = nil
	if err := s.PutBook(ctx, meta, blob); err != nil {
		t.Fatalf("PutBook() failed: %v", err)
	}

	cover, err = s.GetCover(ctx, "bk-no-cover")
	if err != nil {
		t.Fatalf("GetCover() on coverless book failed: %v", err)
	}
	if len(cover) != 0 {
		t.Errorf("GetCover() on coverless book returned %d bytes, want none", len(cover))
	}
}

func testDeleteRemovesBothRows(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	putTestBook(t, s, "bk-delete", []byte("doomed"))

	if err := s.DeleteBook(ctx, "bk-delete"); err != nil {
		t.Fatalf("DeleteBook() failed: %v", err)
	}

	if _, err := s.GetMetadata(ctx, "bk-delete"); !store.IsNotFound(err) {
		t.Errorf("metadata row survived delete: err = %v", err)
	}
	if _, err := s.GetBlob(ctx, "bk-delete"); !store.IsNotFound(err) {
		t.Errorf("blob row survived delete: err = %v", err)
	}

	exists, err := s.HasBook(ctx, "bk-delete")
	if err != nil {
		t.Fatalf("HasBook() failed: %v", err)
	}
	if exists {
		t.Error("HasBook() = true after delete")
	}
}

func testDeleteIsIdempotent(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	// Never cached: still a success
	if err := s.DeleteBook(ctx, "bk-never-cached"); err != nil {
		t.Fatalf("DeleteBook() on uncached book failed: %v", err)
	}

	putTestBook(t, s, "bk-twice", []byte("delete me twice"))
	if err := s.DeleteBook(ctx, "bk-twice"); err != nil {
		t.Fatalf("first DeleteBook() failed: %v", err)
	}
	if err := s.DeleteBook(ctx, "bk-twice"); err != nil {
		t.Fatalf("second DeleteBook() failed: %v", err)
	}
}

func testHealthcheck(t *testing.T, factory StoreFactory) {
	s := factory(t)

	if err := s.Healthcheck(t.Context()); err != nil {
		t.Fatalf("Healthcheck() failed: %v", err)
	}
}
