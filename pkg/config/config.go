package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pagekeep/pagekeep/internal/bytesize"
)

// Config represents the PageKeep configuration.
//
// This structure captures the static configuration of an embedding host:
//   - Logging configuration
//   - Offline store backend selection (badger, sqlite, memory)
//   - Fetch settings (timeouts, download size cap, optional S3 source)
//   - Connectivity probe settings
//   - Reading session journaling
//   - Metrics toggle
//
// Configuration sources (in order of precedence):
//  1. Environment variables (PAGEKEEP_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Store selects and configures the offline book store backend
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Fetch configures book and cover downloads
	Fetch FetchConfig `mapstructure:"fetch" yaml:"fetch"`

	// Connectivity configures the online/offline probe loop
	Connectivity ConnectivityConfig `mapstructure:"connectivity" yaml:"connectivity"`

	// Session configures reading session journaling
	Session SessionConfig `mapstructure:"session" yaml:"session"`

	// Metrics toggles Prometheus instrumentation
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// StoreConfig selects the offline store backend.
//
// Every backend holds both the book bytes and the catalog rows so a
// single handle covers the whole cache. Only the selected backend's
// sub-section is consulted.
type StoreConfig struct {
	// Backend selects the storage engine
	// Valid values: badger, sqlite, memory
	Backend string `mapstructure:"backend" validate:"required,oneof=badger sqlite memory" yaml:"backend"`

	// Badger configures the BadgerDB backend
	Badger BadgerStoreConfig `mapstructure:"badger" yaml:"badger"`

	// SQLite configures the SQLite backend
	SQLite SQLiteStoreConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

// BadgerStoreConfig configures the BadgerDB store backend.
type BadgerStoreConfig struct {
	// Path is the directory holding the BadgerDB files.
	// Created on first open if missing.
	Path string `mapstructure:"path" yaml:"path"`
}

// SQLiteStoreConfig configures the SQLite store backend.
type SQLiteStoreConfig struct {
	// Path is the database file path. Created on first open if missing.
	Path string `mapstructure:"path" yaml:"path"`
}

// FetchConfig configures book and cover downloads.
type FetchConfig struct {
	// Timeout bounds a single download request
	Timeout time.Duration `mapstructure:"timeout" validate:"required,gt=0" yaml:"timeout"`

	// MaxFileSize caps the size of a single downloaded file.
	// Accepts human-readable values like "100MiB". Zero means the
	// fetcher default applies.
	MaxFileSize bytesize.ByteSize `mapstructure:"max_file_size" yaml:"max_file_size"`

	// S3 configures an optional S3-compatible book source for s3:// URLs
	S3 S3FetchConfig `mapstructure:"s3" yaml:"s3"`
}

// S3FetchConfig configures an S3-compatible download source.
//
// When Enabled, the host wires an S3 fetcher next to the HTTP one so
// book descriptors may carry s3://bucket/key URLs.
type S3FetchConfig struct {
	// Enabled controls whether the S3 fetcher is constructed
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint overrides the AWS endpoint (MinIO, Localstack).
	// Empty uses the default AWS resolution.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Region is the AWS region
	Region string `mapstructure:"region" yaml:"region"`

	// AccessKeyID is the static credential ID
	AccessKeyID string `mapstructure:"access_key_id" yaml:"access_key_id"`

	// SecretAccessKey is the static credential secret
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	// ForcePathStyle switches to path-style addressing, required by most
	// S3-compatible servers
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// ConnectivityConfig configures the online/offline probe loop.
type ConnectivityConfig struct {
	// ProbeURL is the endpoint probed with HEAD requests
	ProbeURL string `mapstructure:"probe_url" validate:"required,url" yaml:"probe_url"`

	// Interval is how often the probe loop runs
	Interval time.Duration `mapstructure:"interval" validate:"required,gt=0" yaml:"interval"`

	// ProbeTimeout bounds a single probe request
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" validate:"required,gt=0" yaml:"probe_timeout"`
}

// SessionConfig configures reading session journaling.
type SessionConfig struct {
	// TickInterval is how often an active session snapshot is journaled
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required,gt=0" yaml:"tick_interval"`

	// Path is the SQLite journal file path.
	// Empty keeps the journal in memory (lost on restart).
	Path string `mapstructure:"path" yaml:"path"`
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	// Enabled controls whether cache metrics are registered
	// Default: false (opt-in for metrics)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PAGEKEEP_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	// If no config file was found, use defaults
	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file with restricted permissions (0600 = owner read/write only).
	// Config files may contain S3 credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use PAGEKEEP_ prefix and underscores
	// Example: PAGEKEEP_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("PAGEKEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/pagekeep/config.yaml
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			return false, nil
		}
		// Other errors are problems
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes ByteSize and time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts strings
// and integers to bytesize.ByteSize. This enables config files to use
// human-readable sizes like "1GiB", "500MiB", "100MB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to ByteSize
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse human-readable string like "1GiB", "500MiB", "100MB"
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "pagekeep")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "pagekeep")
}

// getDataDir returns the data directory path for store and journal files.
//
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share, or falls back to
// current directory (.) if home directory cannot be determined.
func getDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "pagekeep")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".local", "share", "pagekeep")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}
