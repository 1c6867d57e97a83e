package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/pagekeep/pkg/session"
)

func testRecord(id, bookID string, startedAt time.Time) session.Record {
	return session.Record{
		SessionID:   id,
		BookID:      bookID,
		StartPage:   1,
		LastPage:    5,
		PagesRead:   4,
		MinutesRead: 2,
		StartedAt:   startedAt,
		UpdatedAt:   startedAt.Add(2 * time.Minute),
	}
}

func TestUpsertReplacesSnapshot(t *testing.T) {
	s := New()
	ctx := t.Context()
	base := time.Now().UTC()

	rec := testRecord("sess-1", "bk-1", base)
	require.NoError(t, s.UpsertSession(ctx, rec))

	rec.LastPage = 20
	rec.PagesRead = 19
	require.NoError(t, s.UpsertSession(ctx, rec))

	sessions := s.Sessions()
	require.Len(t, sessions, 1, "upsert must replace, not append")
	assert.Equal(t, 19, sessions[0].PagesRead)
	assert.Equal(t, 2, s.Upserts())
}

func TestSessionsOrderedByStart(t *testing.T) {
	s := New()
	ctx := t.Context()
	base := time.Now().UTC()

	require.NoError(t, s.UpsertSession(ctx, testRecord("sess-b", "bk-1", base.Add(time.Hour))))
	require.NoError(t, s.UpsertSession(ctx, testRecord("sess-a", "bk-2", base)))

	sessions := s.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "sess-a", sessions[0].SessionID)
	assert.Equal(t, "sess-b", sessions[1].SessionID)
}

func TestClosedStoreRejectsUpserts(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	err := s.UpsertSession(t.Context(), testRecord("sess-1", "bk-1", time.Now()))
	assert.Error(t, err)
}
