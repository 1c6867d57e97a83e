package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/pagekeep/pkg/session"
)

func newTestStore(t *testing.T) (*SessionStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func testRecord(id, bookID string, startedAt time.Time) session.Record {
	return session.Record{
		SessionID:   id,
		BookID:      bookID,
		StartPage:   10,
		LastPage:    25,
		PagesRead:   15,
		MinutesRead: 45,
		StartedAt:   startedAt,
		UpdatedAt:   startedAt.Add(45 * time.Minute),
	}
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestUpsertAndListRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()
	base := time.Now().UTC().Truncate(time.Millisecond)

	rec := testRecord("sess-1", "bk-1", base)
	require.NoError(t, s.UpsertSession(ctx, rec))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	got := sessions[0]
	assert.Equal(t, rec.SessionID, got.SessionID)
	assert.Equal(t, rec.BookID, got.BookID)
	assert.Equal(t, rec.StartPage, got.StartPage)
	assert.Equal(t, rec.LastPage, got.LastPage)
	assert.Equal(t, rec.PagesRead, got.PagesRead)
	assert.Equal(t, rec.MinutesRead, got.MinutesRead)
	assert.True(t, got.StartedAt.Equal(base))
}

func TestUpsertReplacesSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()

	rec := testRecord("sess-1", "bk-1", time.Now().UTC())
	require.NoError(t, s.UpsertSession(ctx, rec))

	rec.LastPage = 90
	rec.PagesRead = 80
	rec.MinutesRead = 120
	require.NoError(t, s.UpsertSession(ctx, rec))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1, "upsert must replace, not append")
	assert.Equal(t, 80, sessions[0].PagesRead)
	assert.Equal(t, 120, sessions[0].MinutesRead)
}

func TestUpsertRejectsEmptySessionID(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.UpsertSession(t.Context(), session.Record{BookID: "bk-1"})
	require.Error(t, err)
}

func TestListOrderedByStart(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.UpsertSession(ctx, testRecord("sess-late", "bk-1", base.Add(time.Hour))))
	require.NoError(t, s.UpsertSession(ctx, testRecord("sess-early", "bk-2", base)))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "sess-early", sessions[0].SessionID)
	assert.Equal(t, "sess-late", sessions[1].SessionID)
}

func TestDeleteSessions(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := t.Context()
	base := time.Now().UTC()

	require.NoError(t, s.UpsertSession(ctx, testRecord("sess-1", "bk-1", base)))
	require.NoError(t, s.UpsertSession(ctx, testRecord("sess-2", "bk-1", base.Add(time.Minute))))
	require.NoError(t, s.UpsertSession(ctx, testRecord("sess-3", "bk-2", base.Add(2*time.Minute))))

	require.NoError(t, s.DeleteSessions(ctx, []string{"sess-1", "sess-3"}))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-2", sessions[0].SessionID)

	// Empty batch is a no-op
	require.NoError(t, s.DeleteSessions(ctx, nil))
}

func TestJournalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := t.Context()

	phase1, err := New(path)
	require.NoError(t, err)
	require.NoError(t, phase1.UpsertSession(ctx, testRecord("sess-1", "bk-1", time.Now().UTC())))
	require.NoError(t, phase1.Close())

	phase2, err := New(path)
	require.NoError(t, err)
	defer phase2.Close()

	sessions, err := phase2.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-1", sessions[0].SessionID)
}
