// Package bookcache coordinates offline copies of library books.
//
// The Manager owns a Store (where cached books live) and a Fetcher
// (where book files come from) and keeps an in-memory inventory of the
// cached library so that membership checks, listings and storage
// accounting never touch the backend.
//
// Key design principles:
//   - One save is one transaction: the metadata row and the blob row
//     land together or not at all
//   - A failed save never damages a previously cached copy
//   - The inventory is reloaded from the store after every mutation,
//     never incrementally patched
//   - Saves for the same book are serialized; saves for different
//     books run in parallel
//
// The manager is an owned instance, not a singleton. Hosts construct
// one per library and close it when done.
package bookcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagekeep/pagekeep/internal/logger"
	"github.com/pagekeep/pagekeep/pkg/connectivity"
	"github.com/pagekeep/pagekeep/pkg/fetch"
	"github.com/pagekeep/pagekeep/pkg/store"
)

const defaultBulkConcurrency = 3

// Manager is the cache coordinator.
//
// Thread safety: all methods are safe for concurrent use. Operations on
// different books do not block each other; saves and removals of the
// same book are serialized.
type Manager struct {
	store   store.Store
	fetcher fetch.Fetcher
	monitor *connectivity.Monitor
	metrics Metrics

	fetchCovers     bool
	bulkConcurrency int

	// mu guards the inventory and the downloading set.
	mu          sync.RWMutex
	books       []store.BookMetadata
	byID        map[string]struct{}
	downloading map[string]struct{}

	// locks serializes mutations per book ID. Entries are refcounted
	// and removed once the last holder releases.
	locksMu sync.Mutex
	locks   map[string]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Manager.
type Option func(*Manager)

// WithMonitor wires a connectivity monitor. When set, saves fail fast
// with KindOffline instead of waiting out a download timeout.
func WithMonitor(m *connectivity.Monitor) Option {
	return func(mgr *Manager) {
		mgr.monitor = m
	}
}

// WithMetrics wires a metrics collector. Nil disables collection.
func WithMetrics(m Metrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// WithCoverFetching toggles cover downloads during saves. Covers are
// fetched by default; disabling is for hosts on metered connections.
func WithCoverFetching(enabled bool) Option {
	return func(mgr *Manager) {
		mgr.fetchCovers = enabled
	}
}

// WithBulkConcurrency bounds how many downloads SaveAllOffline runs in
// parallel. Values below one fall back to the default of three.
func WithBulkConcurrency(n int) Option {
	return func(mgr *Manager) {
		if n >= 1 {
			mgr.bulkConcurrency = n
		}
	}
}

// New creates a Manager on top of the given store and fetcher and
// loads the inventory of already cached books.
func New(ctx context.Context, st store.Store, fetcher fetch.Fetcher, opts ...Option) (*Manager, error) {
	if st == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher must not be nil")
	}

	m := &Manager{
		store:           st,
		fetcher:         fetcher,
		fetchCovers:     true,
		bulkConcurrency: defaultBulkConcurrency,
		byID:            make(map[string]struct{}),
		downloading:     make(map[string]struct{}),
		locks:           make(map[string]*idLock),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to load cached book inventory: %w", err)
	}

	logger.Info("book cache ready", logger.KeyCount, len(m.books))
	return m, nil
}

// Refresh reloads the in-memory inventory from the store. Called
// internally after every mutation; hosts only need it when something
// else wrote to the same store.
func (m *Manager) Refresh(ctx context.Context) error {
	books, err := m.store.ListMetadata(ctx)
	if err != nil {
		return wrapError(KindTransaction, "", err)
	}

	byID := make(map[string]struct{}, len(books))
	for _, b := range books {
		byID[b.ID] = struct{}{}
	}

	m.mu.Lock()
	m.books = books
	m.byID = byID
	m.mu.Unlock()

	m.recordInventory()
	return nil
}

// Close releases the underlying store. The manager must not be used
// afterwards.
func (m *Manager) Close() error {
	return m.store.Close()
}

// lockID acquires the per-book lock for id, creating it on first use.
func (m *Manager) lockID(id string) *idLock {
	m.locksMu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &idLock{}
		m.locks[id] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	return l
}

// unlockID releases the per-book lock and drops the entry once nobody
// is waiting on it.
func (m *Manager) unlockID(id string, l *idLock) {
	l.mu.Unlock()

	m.locksMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
	m.locksMu.Unlock()
}

// setDownloading marks or unmarks a book as having a download in
// flight.
func (m *Manager) setDownloading(id string, active bool) {
	m.mu.Lock()
	if active {
		m.downloading[id] = struct{}{}
	} else {
		delete(m.downloading, id)
	}
	m.mu.Unlock()
}

// refreshAfterMutation reloads the inventory after a successful store
// write. The write is already durable at this point, so a listing
// failure is logged rather than turned into an operation failure.
func (m *Manager) refreshAfterMutation(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		logger.Error("failed to refresh inventory after store mutation", logger.Err(err))
	}
}

// recordInventory publishes book count and total size to metrics.
func (m *Manager) recordInventory() {
	if m.metrics == nil {
		return
	}

	m.mu.RLock()
	count := len(m.books)
	var total int64
	for _, b := range m.books {
		total += b.FileSizeBytes
	}
	m.mu.RUnlock()

	m.metrics.RecordBookCount(count)
	m.metrics.RecordTotalSize(total)
}
