// Package book defines the domain types shared by the offline cache:
// the book descriptor supplied by the host application, the supported
// file formats, and the cached file handed back to the reader UI.
package book

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Book is the descriptor the host application passes in when it wants a
// book cached for offline reading. It carries everything needed to fetch
// and later re-display the book; the cache never mutates it.
type Book struct {
	// ID uniquely identifies the book within the host's catalog.
	ID string `json:"id" validate:"required"`

	// Title is the display title.
	Title string `json:"title"`

	// Author is optional display metadata.
	Author string `json:"author,omitempty"`

	// FileURL locates the primary file. Supported schemes are http(s)
	// and s3.
	FileURL string `json:"file_url" validate:"required,url"`

	// FileType is the format of the primary file.
	FileType FileType `json:"file_type" validate:"required,filetype"`

	// CoverURL optionally locates a cover image. Fetch failures for the
	// cover never fail a save.
	CoverURL string `json:"cover_url,omitempty" validate:"omitempty,url"`

	// LastPageRead is the reading position known at save time.
	LastPageRead int `json:"last_page_read,omitempty" validate:"gte=0"`
}

// OfflineFile is a cached primary file returned to the reader UI.
type OfflineFile struct {
	Data        []byte
	ContentType string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "filetype" restricts a field to the supported format set
	_ = v.RegisterValidation("filetype", func(fl validator.FieldLevel) bool {
		return FileType(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks that the descriptor is complete enough to cache:
// non-empty ID, a parseable file URL and a supported file type.
func (b *Book) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid book descriptor: %w", err)
	}
	return nil
}
