package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so cached-book
// activity can be filtered and aggregated by host applications.
const (
	// ========================================================================
	// Book & Content
	// ========================================================================
	KeyBookID      = "book_id"      // Book identifier
	KeyTitle       = "title"        // Book title
	KeyFileType    = "file_type"    // Book file type: pdf, epub, cbz, txt
	KeyContentType = "content_type" // MIME type of stored bytes
	KeySize        = "size"         // Payload size in bytes
	KeyURL         = "url"          // Remote URL being fetched
	KeyCoverURL    = "cover_url"    // Cover image URL

	// ========================================================================
	// Store Backend
	// ========================================================================
	KeyBackend = "backend" // Store backend: badger, sqlite, memory
	KeyPath    = "path"    // Local database path
	KeyCount   = "count"   // Number of rows affected or listed

	// ========================================================================
	// Connectivity
	// ========================================================================
	KeyOnline   = "online"    // Connectivity state
	KeyProbeURL = "probe_url" // Endpoint used for reachability probes

	// ========================================================================
	// Reading Sessions
	// ========================================================================
	KeySessionID = "session_id" // Reading session identifier
	KeyPage      = "page"       // Page number
	KeyMinutes   = "minutes"    // Minutes read
	KeyPages     = "pages"      // Pages advanced

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyOperation  = "operation"   // Sub-operation name for compound operations
)

// Err returns a slog attribute for an error value, tolerating nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
