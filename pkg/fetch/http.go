package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pagekeep/pagekeep/internal/bytesize"
	"github.com/pagekeep/pagekeep/internal/logger"
)

const (
	// defaultHTTPTimeout bounds a whole download. Book files are large
	// but finite; anything slower than this is effectively offline.
	defaultHTTPTimeout = 5 * time.Minute

	// defaultMaxSize caps how much a single fetch may buffer in memory.
	defaultMaxSize = bytesize.GiB
)

// HTTPFetcher downloads resources over http(s).
type HTTPFetcher struct {
	client  *http.Client
	maxSize bytesize.ByteSize
}

// HTTPOption customizes an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the underlying http.Client. The caller owns
// timeout configuration on the provided client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

// WithMaxSize caps the number of bytes a single fetch may buffer.
func WithMaxSize(n bytesize.ByteSize) HTTPOption {
	return func(f *HTTPFetcher) {
		f.maxSize = n
	}
}

// NewHTTPFetcher creates a fetcher with sane defaults: a five minute
// request timeout and a 1GiB size cap.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL and returns its body and reported content type.
// Non-2xx responses and oversized bodies come back as *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to build request: %w", err)}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	// Read one byte past the cap so an exactly-at-cap body still passes
	limit := f.maxSize.Int64()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(data)) > limit {
		return nil, &FetchError{
			URL: rawURL,
			Err: fmt.Errorf("response exceeds size cap of %s", f.maxSize),
		}
	}

	logger.Debug("fetched resource",
		logger.KeyURL, rawURL,
		logger.KeySize, len(data),
		logger.KeyDurationMs, logger.Duration(start))

	return &Result{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
