package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pagekeep/pagekeep/internal/logger"
)

const defaultTickInterval = 30 * time.Second

// Recorder tracks the one reading session a device has at a time.
//
// The state machine is Idle or Active. StartSession moves Idle to
// Active; EndSession (or Close) moves back. Page updates and the
// snapshot methods are no-ops while Idle, so hosts can call them
// unconditionally from their UI lifecycle hooks.
//
// None of the methods return errors: losing a journal entry must never
// break the reading flow, so persistence failures are logged instead.
type Recorder struct {
	store        Store
	tickInterval time.Duration

	mu        sync.Mutex
	active    bool
	sessionID string
	bookID    string
	startPage int
	lastPage  int
	startedAt time.Time

	started   bool
	closed    bool
	stopCh    chan struct{}
	stoppedCh chan struct{}

	// now is the clock, swappable in tests.
	now func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithTickInterval sets how often an active session is journaled.
// Values of zero or below fall back to the default of 30 seconds.
func WithTickInterval(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.tickInterval = d
		}
	}
}

// NewRecorder creates a recorder journaling to store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:        store,
		tickInterval: defaultTickInterval,
		stopCh:       make(chan struct{}),
		stoppedCh:    make(chan struct{}),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the periodic snapshot loop. Without it sessions are
// still journaled on Flush and EndSession, just not on a timer.
// Calling Start twice, or after Close, is a no-op.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.closed {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go r.loop(ctx)
}

// StartSession begins a session for a book. No-op when a session is
// already active, the recorder is closed, or bookID is empty.
func (r *Recorder) StartSession(bookID string, startPage int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active || r.closed || bookID == "" {
		return
	}

	r.active = true
	r.sessionID = uuid.New().String()
	r.bookID = bookID
	r.startPage = startPage
	r.lastPage = startPage
	r.startedAt = r.now()

	logger.Debug("reading session started",
		logger.KeySessionID, r.sessionID,
		logger.KeyBookID, bookID,
		logger.KeyPage, startPage)
}

// UpdatePage records the reader's current page. No-op while Idle.
func (r *Recorder) UpdatePage(page int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return
	}
	r.lastPage = page
}

// Active reports whether a session is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Flush journals a snapshot of the active session without ending it.
// Hosts call this when the app loses visibility. No-op while Idle.
func (r *Recorder) Flush(ctx context.Context) {
	rec, ok := r.snapshot(false)
	if !ok {
		return
	}
	r.persist(ctx, rec)
}

// EndSession journals the final snapshot and returns to Idle. The
// final record counts at least one page. No-op while Idle.
func (r *Recorder) EndSession(ctx context.Context) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	rec := r.buildRecord(true)
	r.active = false
	r.mu.Unlock()

	r.persist(ctx, rec)

	logger.Info("reading session ended",
		logger.KeySessionID, rec.SessionID,
		logger.KeyBookID, rec.BookID,
		logger.KeyMinutes, rec.MinutesRead,
		logger.KeyPages, rec.PagesRead)
}

// Close ends any active session and stops the snapshot loop. Safe to
// call more than once. A closed recorder accepts no new sessions.
func (r *Recorder) Close(ctx context.Context) {
	r.EndSession(ctx)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	wasStarted := r.started
	r.mu.Unlock()

	if !wasStarted {
		return
	}
	close(r.stopCh)
	<-r.stoppedCh
}

// loop journals the active session on every tick until stopped.
func (r *Recorder) loop(ctx context.Context) {
	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Flush(ctx)
		}
	}
}

// snapshot builds a Record of the current session under the lock.
// Returns false while Idle.
func (r *Recorder) snapshot(final bool) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return Record{}, false
	}
	return r.buildRecord(final), true
}

// buildRecord computes the derived fields. Callers hold r.mu.
func (r *Recorder) buildRecord(final bool) Record {
	now := r.now()

	minutes := int(math.Ceil(now.Sub(r.startedAt).Minutes()))
	if minutes < 1 {
		minutes = 1
	}

	pages := r.lastPage - r.startPage
	if pages < 0 {
		pages = -pages
	}
	if final && pages < 1 {
		pages = 1
	}

	return Record{
		SessionID:   r.sessionID,
		BookID:      r.bookID,
		StartPage:   r.startPage,
		LastPage:    r.lastPage,
		PagesRead:   pages,
		MinutesRead: minutes,
		StartedAt:   r.startedAt,
		UpdatedAt:   now,
	}
}

// persist journals a record, absorbing failures.
func (r *Recorder) persist(ctx context.Context, rec Record) {
	if err := r.store.UpsertSession(ctx, rec); err != nil {
		logger.Warn("failed to journal reading session",
			logger.KeySessionID, rec.SessionID,
			logger.KeyBookID, rec.BookID,
			logger.Err(err))
	}
}
