package store

import (
	"time"

	"github.com/pagekeep/pagekeep/pkg/book"
)

// BookMetadata is a row in the metadata table: everything the host
// application needs to render its offline shelf without touching the
// blob table.
//
// A metadata row exists exactly when the blob row with the same ID
// exists. Backends enforce this by writing and deleting both rows inside
// a single transaction.
type BookMetadata struct {
	// ID is the book identifier, shared with the blob row.
	ID string `json:"id"`

	// Title and Author are display metadata captured at save time.
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`

	// FileType is the format of the cached primary file.
	FileType book.FileType `json:"file_type"`

	// CoverURL is the remote cover location recorded for re-fetching.
	CoverURL string `json:"cover_url,omitempty"`

	// LastPageRead is the reading position snapshotted at save time.
	LastPageRead int `json:"last_page_read,omitempty"`

	// CachedAt is when the current copy was persisted. Re-saving a book
	// overwrites it.
	CachedAt time.Time `json:"cached_at"`

	// FileSizeBytes is the length of the blob row's primary file data.
	// Storage accounting sums this column, so it must always match.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// BookBlob is a row in the blob table: the cached bytes themselves.
type BookBlob struct {
	// BookID matches the metadata row's ID.
	BookID string `json:"book_id"`

	// Data is the primary file content.
	Data []byte `json:"data"`

	// CoverData is the cover image content, nil when no cover was
	// available at save time.
	CoverData []byte `json:"cover_data,omitempty"`

	// ContentType is the MIME type of Data.
	ContentType string `json:"content_type"`
}
