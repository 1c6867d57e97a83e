package bookcache

import (
	"context"
	"fmt"
	"time"

	"github.com/pagekeep/pagekeep/internal/logger"
)

// RemoveOffline deletes a book's cached copy, metadata and blob
// together. Removing a book that was never cached is a no-op, not an
// error, so hosts can call it blindly from a "remove download" action.
func (m *Manager) RemoveOffline(ctx context.Context, id string) error {
	if id == "" {
		return wrapError(KindInvalidInput, "", fmt.Errorf("book ID must not be empty"))
	}

	start := time.Now()

	l := m.lockID(id)
	defer m.unlockID(id, l)

	if err := m.store.DeleteBook(ctx, id); err != nil {
		return wrapError(KindTransaction, id, err)
	}

	m.refreshAfterMutation(ctx)

	logger.Info("book removed from offline cache", logger.KeyBookID, id)

	if m.metrics != nil {
		m.metrics.ObserveRemove(time.Since(start))
	}
	return nil
}

// ClearAll wipes the entire offline cache in one transaction.
//
// No per-book locks are taken: a save racing with ClearAll may land
// after the wipe and survive it, which is the documented last-writer
// semantics. The downloading set is left alone; in-flight saves finish
// normally.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return wrapError(KindTransaction, "", err)
	}

	m.refreshAfterMutation(ctx)

	logger.Info("offline cache cleared")
	return nil
}
