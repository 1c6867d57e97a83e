package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagekeep/pagekeep/pkg/session"
	"github.com/pagekeep/pagekeep/pkg/store"
)

func TestOpenStore_Memory(t *testing.T) {
	st, err := OpenStore(context.Background(), StoreConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("Failed to open memory store: %v", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Healthcheck(context.Background()); err != nil {
		t.Errorf("Healthcheck failed on fresh store: %v", err)
	}
}

func TestOpenStore_EmptyBackendDefaultsToMemory(t *testing.T) {
	st, err := OpenStore(context.Background(), StoreConfig{})
	if err != nil {
		t.Fatalf("Failed to open store with empty backend: %v", err)
	}
	defer func() { _ = st.Close() }()
}

func TestOpenStore_Badger(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := StoreConfig{Backend: "badger"}
	cfg.Badger.Path = filepath.Join(tmpDir, "books")

	st, err := OpenStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open badger store: %v", err)
	}
	defer func() { _ = st.Close() }()

	// Sanity: the opened store accepts writes
	meta := store.BookMetadata{
		ID:       "cfg-badger",
		Title:    "Opened From Config",
		FileType: "epub",
		CachedAt: time.Now().UTC(),
	}
	blob := store.BookBlob{BookID: "cfg-badger", Data: []byte("payload")}
	if err := st.PutBook(context.Background(), meta, blob); err != nil {
		t.Errorf("PutBook failed on config-opened store: %v", err)
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := StoreConfig{Backend: "sqlite"}
	cfg.SQLite.Path = filepath.Join(tmpDir, "books.db")

	st, err := OpenStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Healthcheck(context.Background()); err != nil {
		t.Errorf("Healthcheck failed on fresh store: %v", err)
	}
}

func TestOpenStore_MissingBadgerPath(t *testing.T) {
	_, err := OpenStore(context.Background(), StoreConfig{Backend: "badger"})
	if err == nil {
		t.Fatal("Expected error for badger backend without path")
	}
}

func TestOpenStore_MissingSQLitePath(t *testing.T) {
	_, err := OpenStore(context.Background(), StoreConfig{Backend: "sqlite"})
	if err == nil {
		t.Fatal("Expected error for sqlite backend without path")
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), StoreConfig{Backend: "postgres"})
	if err == nil {
		t.Fatal("Expected error for unknown backend")
	}
}

func TestOpenSessionStore_MemoryWhenPathEmpty(t *testing.T) {
	st, err := OpenSessionStore(SessionConfig{})
	if err != nil {
		t.Fatalf("Failed to open in-memory session store: %v", err)
	}
	defer func() { _ = st.Close() }()

	rec := session.Record{
		SessionID: "cfg-session",
		BookID:    "book-1",
		StartedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := st.UpsertSession(context.Background(), rec); err != nil {
		t.Errorf("UpsertSession failed on in-memory journal: %v", err)
	}
}

func TestOpenSessionStore_SQLite(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := SessionConfig{Path: filepath.Join(tmpDir, "sessions.db")}
	st, err := OpenSessionStore(cfg)
	if err != nil {
		t.Fatalf("Failed to open sqlite session store: %v", err)
	}
	defer func() { _ = st.Close() }()

	rec := session.Record{
		SessionID: "cfg-session",
		BookID:    "book-1",
		StartedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := st.UpsertSession(context.Background(), rec); err != nil {
		t.Errorf("UpsertSession failed on sqlite journal: %v", err)
	}
}

func TestNewFetcher_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/epub+zip")
		_, _ = w.Write([]byte("book bytes"))
	}))
	defer srv.Close()

	f, err := NewFetcher(context.Background(), FetchConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("Failed to build fetcher: %v", err)
	}

	res, err := f.Fetch(context.Background(), srv.URL+"/book.epub")
	if err != nil {
		t.Fatalf("Fetch through config-built fetcher failed: %v", err)
	}
	if string(res.Data) != "book bytes" {
		t.Errorf("Expected body 'book bytes', got %q", res.Data)
	}
}

func TestNewFetcher_S3EnabledRoutesByScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("via http"))
	}))
	defer srv.Close()

	cfg := FetchConfig{Timeout: 10 * time.Second}
	cfg.S3.Enabled = true
	cfg.S3.Region = "us-east-1"
	cfg.S3.AccessKeyID = "test"
	cfg.S3.SecretAccessKey = "test"

	f, err := NewFetcher(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to build fetcher with S3 enabled: %v", err)
	}

	// HTTP URLs still route to the HTTP fetcher
	res, err := f.Fetch(context.Background(), srv.URL+"/book.epub")
	if err != nil {
		t.Fatalf("HTTP fetch through scheme router failed: %v", err)
	}
	if string(res.Data) != "via http" {
		t.Errorf("Expected body 'via http', got %q", res.Data)
	}

	// Unknown schemes are rejected by the router
	if _, err := f.Fetch(context.Background(), "ftp://host/book.epub"); err == nil {
		t.Error("Expected error for unregistered URL scheme")
	}
}
