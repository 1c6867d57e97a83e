// Package fetch retrieves remote book content.
//
// The cache manager only sees the Fetcher interface; concrete fetchers
// cover http(s) downloads and s3 object reads, and MultiFetcher routes
// between them by URL scheme.
package fetch

import (
	"context"
	"fmt"
	"net/url"
)

// Result is a fetched resource.
type Result struct {
	// Data is the complete resource body.
	Data []byte

	// ContentType is the MIME type reported by the remote side, empty
	// when the remote did not report one.
	ContentType string
}

// Fetcher downloads a remote resource into memory.
//
// Implementations must honor context cancellation and must return a
// *FetchError for failures that originate at the remote side, so
// callers can distinguish network failures from local ones.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Result, error)
}

// FetchError describes a failed fetch.
type FetchError struct {
	// URL is the resource that failed.
	URL string

	// StatusCode is the HTTP status, 0 when not applicable.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MultiFetcher routes fetches to registered fetchers by URL scheme.
// The zero value is unusable; construct with NewMultiFetcher.
type MultiFetcher struct {
	fetchers map[string]Fetcher
}

// NewMultiFetcher creates an empty scheme router.
func NewMultiFetcher() *MultiFetcher {
	return &MultiFetcher{fetchers: make(map[string]Fetcher)}
}

// Register binds a fetcher to a URL scheme ("https", "s3", ...).
// Registering the same scheme twice replaces the previous fetcher.
func (m *MultiFetcher) Register(scheme string, f Fetcher) {
	m.fetchers[scheme] = f
}

// Fetch parses rawURL and delegates to the fetcher registered for its
// scheme.
func (m *MultiFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	f, ok := m.fetchers[u.Scheme]
	if !ok {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme %q", u.Scheme)}
	}

	return f.Fetch(ctx, rawURL)
}
