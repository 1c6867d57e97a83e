// Package memory implements session.Store on an in-process map.
// Nothing survives a restart; meant for tests and ephemeral hosts.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pagekeep/pagekeep/pkg/session"
)

// SessionStore journals session snapshots into a map.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]session.Record
	upserts  int
	closed   bool
}

// New creates an empty in-memory session store.
func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]session.Record),
	}
}

// UpsertSession inserts or replaces the snapshot for rec.SessionID.
func (s *SessionStore) UpsertSession(ctx context.Context, rec session.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session store is closed")
	}

	s.sessions[rec.SessionID] = rec
	s.upserts++
	return nil
}

// Sessions returns all journaled snapshots ordered by start time.
func (s *SessionStore) Sessions() []session.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]session.Record, 0, len(s.sessions))
	for _, rec := range s.sessions {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].StartedAt.Before(records[j].StartedAt)
		}
		return records[i].SessionID < records[j].SessionID
	})
	return records
}

// Upserts returns how many snapshots have been journaled in total,
// counting replacements.
func (s *SessionStore) Upserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

// Close marks the store closed.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
