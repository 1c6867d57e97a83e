package bookcache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pagekeep/pagekeep/internal/logger"
	"github.com/pagekeep/pagekeep/pkg/book"
	"github.com/pagekeep/pagekeep/pkg/store"
)

// SaveOffline downloads a book and caches it for offline reading.
//
// The book file is fetched first; the cover (when the descriptor names
// one) is fetched best-effort and a failure there never fails the save.
// Both rows then land in the store under one transaction. A book that
// is already cached is fully replaced. On any failure the previously
// cached copy, if one exists, is left exactly as it was.
//
// While the download runs the book reports IsDownloading. Concurrent
// saves of the same book are serialized; the last writer wins.
func (m *Manager) SaveOffline(ctx context.Context, b book.Book) error {
	start := time.Now()

	if err := b.Validate(); err != nil {
		return m.saveFailed(KindInvalidInput, b.ID, err)
	}

	if m.monitor != nil && !m.monitor.IsOnline() {
		return m.saveFailed(KindOffline, b.ID, fmt.Errorf("device is offline"))
	}

	l := m.lockID(b.ID)
	defer m.unlockID(b.ID, l)

	m.setDownloading(b.ID, true)
	defer m.setDownloading(b.ID, false)

	file, err := m.fetcher.Fetch(ctx, b.FileURL)
	if err != nil {
		return m.saveFailed(KindNetwork, b.ID, fmt.Errorf("failed to download book file: %w", err))
	}

	var coverData []byte
	if m.fetchCovers && b.CoverURL != "" {
		cover, err := m.fetcher.Fetch(ctx, b.CoverURL)
		if err != nil {
			logger.Warn("cover download failed, caching book without cover",
				logger.KeyBookID, b.ID,
				logger.KeyCoverURL, b.CoverURL,
				logger.Err(err))
		} else {
			coverData = cover.Data
		}
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = b.FileType.ContentType()
	}

	meta := store.BookMetadata{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		FileType:      b.FileType,
		CoverURL:      b.CoverURL,
		LastPageRead:  b.LastPageRead,
		CachedAt:      time.Now().UTC(),
		FileSizeBytes: int64(len(file.Data)),
	}
	blob := store.BookBlob{
		BookID:      b.ID,
		Data:        file.Data,
		CoverData:   coverData,
		ContentType: contentType,
	}

	if err := m.store.PutBook(ctx, meta, blob); err != nil {
		return m.saveFailed(KindTransaction, b.ID, err)
	}

	m.refreshAfterMutation(ctx)

	logger.Info("book cached for offline reading",
		logger.KeyBookID, b.ID,
		logger.KeyTitle, b.Title,
		logger.KeySize, meta.FileSizeBytes,
		logger.KeyDurationMs, logger.Duration(start))

	if m.metrics != nil {
		m.metrics.ObserveSave(meta.FileSizeBytes, time.Since(start))
	}
	return nil
}

// SaveAllOffline caches a batch of books, downloading at most
// bulkConcurrency of them at a time.
//
// Every book is attempted regardless of earlier failures; the first
// error is returned once the whole batch has settled. Books that
// saved successfully stay cached even when the batch reports an error.
func (m *Manager) SaveAllOffline(ctx context.Context, books []book.Book) error {
	if len(books) == 0 {
		return nil
	}

	logger.Info("bulk save started", logger.KeyCount, len(books))

	var g errgroup.Group
	g.SetLimit(m.bulkConcurrency)

	for _, b := range books {
		g.Go(func() error {
			return m.SaveOffline(ctx, b)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("bulk save finished", logger.KeyCount, len(books))
	return nil
}

// saveFailed wraps err, records the failure, and logs it.
func (m *Manager) saveFailed(kind ErrorKind, bookID string, err error) error {
	wrapped := wrapError(kind, bookID, err)

	if m.metrics != nil {
		if k, ok := KindOf(wrapped); ok {
			m.metrics.RecordSaveFailure(k)
		}
	}

	logger.Error("failed to cache book",
		logger.KeyBookID, bookID,
		logger.Err(wrapped))
	return wrapped
}
