package bookcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveOfflineDeletesBook(t *testing.T) {
	m, f := newTestManager(t)
	ctx := t.Context()

	b := testDescriptor("bk-rm")
	serveBook(f, b, 300)
	require.NoError(t, m.SaveOffline(ctx, b))
	require.True(t, m.IsOffline("bk-rm"))

	require.NoError(t, m.RemoveOffline(ctx, "bk-rm"))

	assert.False(t, m.IsOffline("bk-rm"))
	assert.Zero(t, m.TotalStorageUsed())

	_, ok, err := m.GetOfflineFile(ctx, "bk-rm")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = m.GetCover(ctx, "bk-rm")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveOfflineIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := t.Context()

	// Never cached, removed twice: both succeed
	require.NoError(t, m.RemoveOffline(ctx, "bk-never"))
	require.NoError(t, m.RemoveOffline(ctx, "bk-never"))
}

func TestRemoveOfflineRejectsEmptyID(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.RemoveOffline(t.Context(), "")
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, kind)
}

func TestRemoveOfflineLeavesOtherBooks(t *testing.T) {
	m, f := newTestManager(t)
	ctx := t.Context()

	keep := testDescriptor("bk-keep")
	drop := testDescriptor("bk-drop")
	serveBook(f, keep, 100)
	serveBook(f, drop, 200)
	require.NoError(t, m.SaveOffline(ctx, keep))
	require.NoError(t, m.SaveOffline(ctx, drop))

	require.NoError(t, m.RemoveOffline(ctx, "bk-drop"))

	assert.True(t, m.IsOffline("bk-keep"))
	assert.False(t, m.IsOffline("bk-drop"))
	assert.EqualValues(t, 100, m.TotalStorageUsed())
}

func TestRemoveMetrics(t *testing.T) {
	rec := &recordingMetrics{}
	m, f := newTestManager(t, WithMetrics(rec))
	ctx := t.Context()

	b := testDescriptor("bk-rm-metrics")
	serveBook(f, b, 50)
	require.NoError(t, m.SaveOffline(ctx, b))
	require.NoError(t, m.RemoveOffline(ctx, "bk-rm-metrics"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, rec.removes)
	assert.Equal(t, 0, rec.bookCount)
	assert.Zero(t, rec.totalSize)
}

func TestClearAllEmptiesCache(t *testing.T) {
	m, f := newTestManager(t)
	ctx := t.Context()

	for _, id := range []string{"bk-x", "bk-y", "bk-z"} {
		b := testDescriptor(id)
		serveBook(f, b, 100)
		require.NoError(t, m.SaveOffline(ctx, b))
	}
	require.EqualValues(t, 300, m.TotalStorageUsed())

	require.NoError(t, m.ClearAll(ctx))

	assert.Empty(t, m.OfflineBooks())
	assert.Zero(t, m.TotalStorageUsed())
	for _, id := range []string{"bk-x", "bk-y", "bk-z"} {
		assert.False(t, m.IsOffline(id))

		_, ok, err := m.GetOfflineFile(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestClearAllOnEmptyCache(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.ClearAll(t.Context()))
}

func TestCacheUsableAfterClearAll(t *testing.T) {
	m, f := newTestManager(t)
	ctx := t.Context()

	b := testDescriptor("bk-again")
	serveBook(f, b, 42)
	require.NoError(t, m.SaveOffline(ctx, b))
	require.NoError(t, m.ClearAll(ctx))

	// The cache keeps working after a wipe
	require.NoError(t, m.SaveOffline(ctx, b))
	assert.True(t, m.IsOffline("bk-again"))
	assert.EqualValues(t, 42, m.TotalStorageUsed())
}
