package config

import (
	"context"
	"fmt"

	"github.com/pagekeep/pagekeep/pkg/fetch"
	"github.com/pagekeep/pagekeep/pkg/session"
	sessionmemory "github.com/pagekeep/pagekeep/pkg/session/memory"
	sessionsqlite "github.com/pagekeep/pagekeep/pkg/session/sqlite"
	"github.com/pagekeep/pagekeep/pkg/store"
	"github.com/pagekeep/pagekeep/pkg/store/badger"
	storememory "github.com/pagekeep/pagekeep/pkg/store/memory"
	storesqlite "github.com/pagekeep/pagekeep/pkg/store/sqlite"
)

// OpenStore opens the configured offline store backend.
//
// The returned store holds both book bytes and catalog rows; the caller
// owns it and must Close it when done.
func OpenStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return storememory.New(), nil
	case "badger":
		if cfg.Badger.Path == "" {
			return nil, fmt.Errorf("badger store requires path to be set")
		}
		return badger.New(cfg.Badger.Path)
	case "sqlite":
		if cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("sqlite store requires path to be set")
		}
		return storesqlite.New(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}

// OpenSessionStore opens the reading session journal.
//
// A configured path opens a SQLite journal there; an empty path keeps
// the journal in memory, which is fine for hosts that only want live
// session state.
func OpenSessionStore(cfg SessionConfig) (session.Store, error) {
	if cfg.Path == "" {
		return sessionmemory.New(), nil
	}
	return sessionsqlite.New(cfg.Path)
}

// NewFetcher builds the download stack from configuration.
//
// The base fetcher is HTTP with the configured timeout and size cap.
// When the S3 source is enabled, an S3 fetcher is wired next to it and
// the result routes by URL scheme.
func NewFetcher(ctx context.Context, cfg FetchConfig) (fetch.Fetcher, error) {
	// Zero values keep the fetcher defaults
	var opts []fetch.HTTPOption
	if cfg.Timeout > 0 {
		opts = append(opts, fetch.WithTimeout(cfg.Timeout))
	}
	if cfg.MaxFileSize > 0 {
		opts = append(opts, fetch.WithMaxSize(cfg.MaxFileSize))
	}
	httpFetcher := fetch.NewHTTPFetcher(opts...)

	if !cfg.S3.Enabled {
		return httpFetcher, nil
	}

	client, err := fetch.NewS3ClientFromConfig(
		ctx,
		cfg.S3.Endpoint,
		cfg.S3.Region,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.ForcePathStyle,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	multi := fetch.NewMultiFetcher()
	multi.Register("http", httpFetcher)
	multi.Register("https", httpFetcher)
	multi.Register("s3", fetch.NewS3Fetcher(client))

	return multi, nil
}
