// Package session records reading sessions.
//
// A session starts when the host opens a book and ends when the reader
// stops. While a session is active the recorder periodically journals a
// snapshot (minutes read, pages advanced) so that progress survives a
// crash or a force-quit between ticks.
//
// Journaling is strictly best effort: a persistence failure is logged
// and swallowed, never surfaced to the reading flow.
package session

import (
	"context"
	"time"
)

// Record is one reading session snapshot.
//
// The same record is upserted repeatedly under its SessionID while the
// session is active; each upsert fully replaces the previous snapshot.
type Record struct {
	// SessionID uniquely identifies the session across upserts
	SessionID string `json:"session_id"`

	// BookID is the book being read
	BookID string `json:"book_id"`

	// StartPage is the page the session started on
	StartPage int `json:"start_page"`

	// LastPage is the most recently reported page
	LastPage int `json:"last_page"`

	// PagesRead is the absolute distance between StartPage and
	// LastPage. A finished session counts at least 1.
	PagesRead int `json:"pages_read"`

	// MinutesRead is the wall-clock session length in minutes, rounded
	// up, and never less than 1.
	MinutesRead int `json:"minutes_read"`

	// StartedAt is when the session began
	StartedAt time.Time `json:"started_at"`

	// UpdatedAt is when this snapshot was taken
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is where session snapshots are journaled.
//
// Hosts may plug in their own backend (a remote reading-stats service);
// the sqlite subpackage provides the durable local default and the
// memory subpackage an ephemeral one.
type Store interface {
	// UpsertSession inserts or fully replaces the snapshot for
	// rec.SessionID.
	UpsertSession(ctx context.Context, rec Record) error

	// Close releases the backend.
	Close() error
}
