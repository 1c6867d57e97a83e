package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pagekeep/pagekeep/pkg/store"
)

// runConsistencyTests runs the no-orphan invariant and argument
// validation conformance tests.
func runConsistencyTests(t *testing.T, factory StoreFactory) {
	t.Run("NoOrphanRows", func(t *testing.T) { testNoOrphanRows(t, factory) })
	t.Run("RejectsEmptyID", func(t *testing.T) { testRejectsEmptyID(t, factory) })
	t.Run("RejectsMismatchedIDs", func(t *testing.T) { testRejectsMismatchedIDs(t, factory) })
	t.Run("HonorsContextCancellation", func(t *testing.T) { testHonorsContextCancellation(t, factory) })
}

// testNoOrphanRows exercises a mixed sequence of operations and checks
// after every step that a metadata row exists exactly when the blob row
// exists.
func testNoOrphanRows(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	checkPaired := func(id string) {
		t.Helper()

		_, metaErr := s.GetMetadata(ctx, id)
		_, blobErr := s.GetBlob(ctx, id)

		metaExists := metaErr == nil
		blobExists := blobErr == nil
		if metaExists != blobExists {
			t.Fatalf("orphan detected for %q: metadata exists=%v, blob exists=%v",
				id, metaExists, blobExists)
		}
		if !metaExists && !store.IsNotFound(metaErr) {
			t.Fatalf("unexpected metadata error for %q: %v", id, metaErr)
		}
		if !blobExists && !store.IsNotFound(blobErr) {
			t.Fatalf("unexpected blob error for %q: %v", id, blobErr)
		}
	}

	checkPaired("bk-x")
	putTestBook(t, s, "bk-x", []byte("one"))
	checkPaired("bk-x")
	putTestBook(t, s, "bk-x", []byte("two, replaced"))
	checkPaired("bk-x")
	putTestBook(t, s, "bk-y", []byte("three"))
	checkPaired("bk-x")
	checkPaired("bk-y")

	if err := s.DeleteBook(ctx, "bk-x"); err != nil {
		t.Fatalf("DeleteBook() failed: %v", err)
	}
	checkPaired("bk-x")
	checkPaired("bk-y")

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	checkPaired("bk-x")
	checkPaired("bk-y")
}

func testRejectsEmptyID(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	meta, blob := testBook("", []byte("anonymous"), time.Now())
	if err := s.PutBook(ctx, meta, blob); err == nil {
		t.Error("PutBook() with empty ID should fail")
	}

	if err := s.DeleteBook(ctx, ""); err == nil {
		t.Error("DeleteBook() with empty ID should fail")
	}
}

func testRejectsMismatchedIDs(t *testing.T, factory StoreFactory) {
	s := factory(t)

	meta, blob := testBook("bk-meta", []byte("split"), time.Now())
	blob.BookID = "bk-blob"

	err := s.PutBook(t.Context(), meta, blob)
	if err == nil {
		t.Fatal("PutBook() with mismatched IDs should fail")
	}

	var se *store.StoreError
	if !errors.As(err, &se) || se.Code != store.ErrInvalidArgument {
		t.Errorf("error %v should be an invalid-argument StoreError", err)
	}
}

func testHonorsContextCancellation(t *testing.T, factory StoreFactory) {
	s := factory(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	meta, blob := testBook("bk-canceled", []byte("never stored"), time.Now())
	if err := s.PutBook(ctx, meta, blob); err == nil {
		t.Error("PutBook() with canceled context should fail")
	}
	if _, err := s.ListMetadata(ctx); err == nil {
		t.Error("ListMetadata() with canceled context should fail")
	}
}
