package sqlite

import (
	"time"

	"github.com/pagekeep/pagekeep/pkg/book"
	"github.com/pagekeep/pagekeep/pkg/store"
)

// bookMetadataRow is the GORM model for the metadata table.
type bookMetadataRow struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Title         string    `gorm:"column:title"`
	Author        string    `gorm:"column:author"`
	FileType      string    `gorm:"column:file_type"`
	CoverURL      string    `gorm:"column:cover_url"`
	LastPageRead  int       `gorm:"column:last_page_read"`
	CachedAt      time.Time `gorm:"column:cached_at;index"`
	FileSizeBytes int64     `gorm:"column:file_size_bytes"`
}

func (bookMetadataRow) TableName() string {
	return "book_metadata"
}

// bookBlobRow is the GORM model for the blob table.
type bookBlobRow struct {
	BookID      string `gorm:"column:book_id;primaryKey"`
	Data        []byte `gorm:"column:data"`
	CoverData   []byte `gorm:"column:cover_data"`
	ContentType string `gorm:"column:content_type"`
}

func (bookBlobRow) TableName() string {
	return "book_blobs"
}

func toMetadataRow(meta store.BookMetadata) bookMetadataRow {
	return bookMetadataRow{
		ID:            meta.ID,
		Title:         meta.Title,
		Author:        meta.Author,
		FileType:      string(meta.FileType),
		CoverURL:      meta.CoverURL,
		LastPageRead:  meta.LastPageRead,
		CachedAt:      meta.CachedAt,
		FileSizeBytes: meta.FileSizeBytes,
	}
}

func fromMetadataRow(row bookMetadataRow) store.BookMetadata {
	return store.BookMetadata{
		ID:            row.ID,
		Title:         row.Title,
		Author:        row.Author,
		FileType:      book.FileType(row.FileType),
		CoverURL:      row.CoverURL,
		LastPageRead:  row.LastPageRead,
		CachedAt:      row.CachedAt,
		FileSizeBytes: row.FileSizeBytes,
	}
}

func toBlobRow(blob store.BookBlob) bookBlobRow {
	return bookBlobRow{
		BookID:      blob.BookID,
		Data:        blob.Data,
		CoverData:   blob.CoverData,
		ContentType: blob.ContentType,
	}
}

func fromBlobRow(row bookBlobRow) store.BookBlob {
	return store.BookBlob{
		BookID:      row.BookID,
		Data:        row.Data,
		CoverData:   row.CoverData,
		ContentType: row.ContentType,
	}
}
