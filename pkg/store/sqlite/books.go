package sqlite

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pagekeep/pagekeep/internal/logger"
	"github.com/pagekeep/pagekeep/pkg/store"
)

// PutBook upserts both rows inside one SQL transaction.
func (s *BookStore) PutBook(ctx context.Context, meta store.BookMetadata, blob store.BookBlob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meta.ID == "" {
		return store.NewInvalidArgumentError("book ID must not be empty")
	}
	if meta.ID != blob.BookID {
		return store.NewInvalidArgumentError("metadata and blob book IDs disagree")
	}

	metaRow := toMetadataRow(meta)
	blobRow := toBlobRow(blob)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&metaRow).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&blobRow).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isBusyError(err) {
			return store.NewIOError("database busy", meta.ID)
		}
		return err
	}

	logger.Debug("book persisted",
		logger.KeyBookID, meta.ID,
		logger.KeySize, meta.FileSizeBytes)
	return nil
}

// DeleteBook removes both rows inside one SQL transaction. Deleting an
// uncached book affects zero rows and succeeds.
func (s *BookStore) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return store.NewInvalidArgumentError("book ID must not be empty")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&bookMetadataRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&bookBlobRow{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isBusyError(err) {
			return store.NewIOError("database busy", id)
		}
		return err
	}

	logger.Debug("book deleted", logger.KeyBookID, id)
	return nil
}

// GetMetadata returns the metadata row for id.
func (s *BookStore) GetMetadata(ctx context.Context, id string) (*store.BookMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row bookMetadataRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		return nil, convertNotFoundError(err, store.NewNotFoundError(id))
	}

	meta := fromMetadataRow(row)
	return &meta, nil
}

// GetBlob returns the blob row for id.
func (s *BookStore) GetBlob(ctx context.Context, id string) (*store.BookBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row bookBlobRow
	err := s.db.WithContext(ctx).First(&row, "book_id = ?", id).Error
	if err != nil {
		return nil, convertNotFoundError(err, store.NewNotFoundError(id))
	}

	blob := fromBlobRow(row)
	return &blob, nil
}

// GetCover selects just the cover column for id. A cached book without
// a cover returns (nil, nil).
func (s *BookStore) GetCover(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row bookBlobRow
	err := s.db.WithContext(ctx).Select("book_id", "cover_data").First(&row, "book_id = ?", id).Error
	if err != nil {
		return nil, convertNotFoundError(err, store.NewNotFoundError(id))
	}

	if len(row.CoverData) == 0 {
		return nil, nil
	}
	return row.CoverData, nil
}

// ListMetadata returns all metadata rows ordered by cached_at then id.
func (s *BookStore) ListMetadata(ctx context.Context) ([]store.BookMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []bookMetadataRow
	err := s.db.WithContext(ctx).Order("cached_at ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	books := make([]store.BookMetadata, 0, len(rows))
	for _, row := range rows {
		books = append(books, fromMetadataRow(row))
	}
	return books, nil
}

// HasBook reports whether a metadata row exists for id.
func (s *BookStore) HasBook(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&bookMetadataRow{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Clear empties both tables inside one SQL transaction.
func (s *BookStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&bookMetadataRow{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&bookBlobRow{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("book store cleared", logger.KeyBackend, "sqlite")
	return nil
}
