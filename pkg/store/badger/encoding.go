package badger

import (
	"encoding/json"
	"fmt"

	"github.com/pagekeep/pagekeep/pkg/store"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// BadgerDB is a key-value store, so prefixed keys organize the two logical
// tables into namespaces. Metadata is JSON for inspectability; file and
// cover bytes are stored raw so they survive the round trip untouched and
// never pay a base64 tax.
//
// Key Namespace Prefixes:
//
// Data Type          Prefix   Key Format    Value Type
// =====================================================================
// Book Metadata      "m:"     m:<bookID>    store.BookMetadata (JSON)
// Primary File Data  "b:"     b:<bookID>    raw bytes
// Cover Image Data   "c:"     c:<bookID>    raw bytes (absent if no cover)
// Content Type       "t:"     t:<bookID>    MIME string (raw bytes)
//
// All four keys for a book are written and deleted inside one transaction,
// which is what keeps the metadata and blob tables consistent.

const (
	prefixMetadata    = "m:"
	prefixBlobData    = "b:"
	prefixCoverData   = "c:"
	prefixContentType = "t:"
)

// keyMetadata generates the key for a metadata row: "m:<bookID>"
func keyMetadata(id string) []byte {
	return []byte(prefixMetadata + id)
}

// keyBlobData generates the key for primary file bytes: "b:<bookID>"
func keyBlobData(id string) []byte {
	return []byte(prefixBlobData + id)
}

// keyCoverData generates the key for cover image bytes: "c:<bookID>"
func keyCoverData(id string) []byte {
	return []byte(prefixCoverData + id)
}

// keyContentType generates the key for the stored MIME type: "t:<bookID>"
func keyContentType(id string) []byte {
	return []byte(prefixContentType + id)
}

// ============================================================================
// JSON Encoding/Decoding
// ============================================================================

func encodeMetadata(meta *store.BookMetadata) ([]byte, error) {
	bytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode book metadata: %w", err)
	}
	return bytes, nil
}

func decodeMetadata(bytes []byte) (*store.BookMetadata, error) {
	var meta store.BookMetadata
	if err := json.Unmarshal(bytes, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode book metadata: %w", err)
	}
	return &meta, nil
}
