// Package badger implements store.Store on BadgerDB.
//
// BadgerDB gives the cache real multi-key transactions, so the metadata
// row and the blob row for a book always commit or fail together. It is
// the default durable backend: a single directory on disk, no external
// processes, safe across restarts.
package badger

import (
	"context"
	"fmt"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/pagekeep/pagekeep/internal/logger"
)

// BookStore is a store.Store backed by a BadgerDB database.
type BookStore struct {
	db *badgerdb.DB
}

// Options tunes the underlying BadgerDB instance.
type Options struct {
	// Path is the database directory. Created if missing. Ignored when
	// InMemory is set.
	Path string

	// SyncWrites forces an fsync on every commit. Slower, but a cached
	// book survives an immediate power loss.
	SyncWrites bool

	// InMemory runs the database without touching disk. Useful for
	// tests that want badger semantics without a TempDir.
	InMemory bool
}

// New opens a durable book store at path with synchronous writes.
func New(path string) (*BookStore, error) {
	return NewWithOptions(Options{Path: path, SyncWrites: true})
}

// NewWithOptions opens a book store with explicit tuning.
func NewWithOptions(opts Options) (*BookStore, error) {
	badgerOpts := badgerdb.DefaultOptions(opts.Path).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(badgerLogger{})

	if opts.InMemory {
		badgerOpts = badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{})
	}

	db, err := badgerdb.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %q: %w", opts.Path, err)
	}

	logger.Debug("opened badger book store",
		logger.KeyBackend, "badger",
		logger.KeyPath, opts.Path)

	return &BookStore{db: db}, nil
}

// Healthcheck verifies the database can serve a read transaction.
func (s *BookStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.View(func(txn *badgerdb.Txn) error {
		return nil
	})
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// Close releases the database. Pending transactions are aborted.
func (s *BookStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	return nil
}

// badgerLogger routes BadgerDB's internal log lines through the module
// logger. Badger is chatty at INFO, so its info output maps to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(badgerMsg(format, args...))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(badgerMsg(format, args...))
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debug(badgerMsg(format, args...))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug(badgerMsg(format, args...))
}

func badgerMsg(format string, args ...any) string {
	return "badger: " + strings.TrimSpace(fmt.Sprintf(format, args...))
}
