package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pagekeep/pagekeep/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyStoreDefaults(&cfg.Store)
	applyFetchDefaults(&cfg.Fetch)
	applyConnectivityDefaults(&cfg.Connectivity)
	applySessionDefaults(&cfg.Session)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyStoreDefaults sets store backend defaults.
//
// Both backend paths get defaults under the data directory so that
// switching backends in an existing config keeps working without
// further edits.
func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "badger"
	}

	if cfg.Badger.Path == "" {
		cfg.Badger.Path = filepath.Join(getDataDir(), "books")
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = filepath.Join(getDataDir(), "books.db")
	}
}

// applyFetchDefaults sets download defaults.
func applyFetchDefaults(cfg *FetchConfig) {
	// Default timeout is 5 minutes; book files are large but finite
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}

	// Default size cap is 1 GiB per file
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = bytesize.GiB
	}

	// S3 defaults apply only when the S3 source is enabled
	if cfg.S3.Enabled && cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
}

// applyConnectivityDefaults sets probe loop defaults.
func applyConnectivityDefaults(cfg *ConnectivityConfig) {
	// Default probe endpoint answers HEAD requests with an empty 204
	if cfg.ProbeURL == "" {
		cfg.ProbeURL = "https://connectivitycheck.gstatic.com/generate_204"
	}
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
}

// applySessionDefaults sets reading session journal defaults.
// Path has no default: an empty path keeps the journal in memory.
func applySessionDefaults(cfg *SessionConfig) {
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 30 * time.Second
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	// No need to set, zero value is false
	_ = cfg
}

// GetDefaultConfig returns a configuration populated entirely with defaults.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
