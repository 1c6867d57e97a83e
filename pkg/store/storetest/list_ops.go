package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/pagekeep/pagekeep/pkg/store"
)

// runListOpsTests runs listing, existence and clearing conformance tests.
func runListOpsTests(t *testing.T, factory StoreFactory) {
	t.Run("ListEmptyStore", func(t *testing.T) { testListEmptyStore(t, factory) })
	t.Run("ListOrderedByCachedAt", func(t *testing.T) { testListOrderedByCachedAt(t, factory) })
	t.Run("ListTiebreaksOnID", func(t *testing.T) { testListTiebreaksOnID(t, factory) })
	t.Run("HasBook", func(t *testing.T) { testHasBook(t, factory) })
	t.Run("ClearEmptiesBothTables", func(t *testing.T) { testClearEmptiesBothTables(t, factory) })
	t.Run("ClearEmptyStore", func(t *testing.T) { testClearEmptyStore(t, factory) })
}

func testListEmptyStore(t *testing.T, factory StoreFactory) {
	s := factory(t)

	books, err := s.ListMetadata(t.Context())
	if err != nil {
		t.Fatalf("ListMetadata() failed: %v", err)
	}
	if len(books) != 0 {
		t.Errorf("ListMetadata() on empty store returned %d rows", len(books))
	}
}

func testListOrderedByCachedAt(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	base := time.Now().UTC().Truncate(time.Second)

	// Insert out of order
	for _, tc := range []struct {
		id     string
		offset time.Duration
	}{
		{id: "bk-middle", offset: 1 * time.Minute},
		{id: "bk-oldest", offset: 0},
		{id: "bk-newest", offset: 2 * time.Minute},
	} {
		meta, blob := testBook(tc.id, []byte(tc.id), base.Add(tc.offset))
		if err := s.PutBook(ctx, meta, blob); err != nil {
			t.Fatalf("PutBook(%q) failed: %v", tc.id, err)
		}
	}

	books, err := s.ListMetadata(ctx)
	if err != nil {
		t.Fatalf("ListMetadata() failed: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("ListMetadata() returned %d rows, want 3", len(books))
	}

	want := []string{"bk-oldest", "bk-middle", "bk-newest"}
	for i, id := range want {
		if books[i].ID != id {
			t.Errorf("books[%d].ID = %q, want %q", i, books[i].ID, id)
		}
	}
}

func testListTiebreaksOnID(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	cachedAt := time.Now().UTC().Truncate(time.Second)
	for _, id := range []string{"bk-b", "bk-a", "bk-c"} {
		meta, blob := testBook(id, []byte(id), cachedAt)
		if err := s.PutBook(ctx, meta, blob); err != nil {
			t.Fatalf("PutBook(%q) failed: %v", id, err)
		}
	}

	books, err := s.ListMetadata(ctx)
	if err != nil {
		t.Fatalf("ListMetadata() failed: %v", err)
	}

	want := []string{"bk-a", "bk-b", "bk-c"}
	for i, id := range want {
		if books[i].ID != id {
			t.Errorf("books[%d].ID = %q, want %q", i, books[i].ID, id)
		}
	}
}

func testHasBook(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	exists, err := s.HasBook(ctx, "bk-probe")
	if err != nil {
		t.Fatalf("HasBook() failed: %v", err)
	}
	if exists {
		t.Error("HasBook() = true on empty store")
	}

	putTestBook(t, s, "bk-probe", []byte("here"))

	exists, err = s.HasBook(ctx, "bk-probe")
	if err != nil {
		t.Fatalf("HasBook() failed: %v", err)
	}
	if !exists {
		t.Error("HasBook() = false for cached book")
	}
}

func testClearEmptiesBothTables(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	for _, id := range []string{"bk-1", "bk-2", "bk-3"} {
		putTestBook(t, s, id, []byte(id))
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	books, err := s.ListMetadata(ctx)
	if err != nil {
		t.Fatalf("ListMetadata() failed: %v", err)
	}
	if len(books) != 0 {
		t.Errorf("ListMetadata() returned %d rows after Clear()", len(books))
	}

	for _, id := range []string{"bk-1", "bk-2", "bk-3"} {
		if _, err := s.GetBlob(ctx, id); !store.IsNotFound(err) {
			t.Errorf("blob %q survived Clear(): err = %v", id, err)
		}
	}

	// The store stays usable after a clear
	putTestBook(t, s, "bk-after-clear", []byte("fresh"))
	exists, err := s.HasBook(ctx, "bk-after-clear")
	if err != nil {
		t.Fatalf("HasBook() failed: %v", err)
	}
	if !exists {
		t.Error("store unusable after Clear()")
	}
}

func testClearEmptyStore(t *testing.T, factory StoreFactory) {
	s := factory(t)

	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() on empty store failed: %v", err)
	}
}
