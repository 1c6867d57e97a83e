package config

import (
	"testing"
	"time"

	"github.com/pagekeep/pagekeep/internal/bytesize"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format text, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output stdout, got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_NormalizesLogLevel(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_Store(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Store.Backend != "badger" {
		t.Errorf("Expected default backend badger, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Badger.Path == "" {
		t.Error("Expected default badger path to be set")
	}
	if cfg.Store.SQLite.Path == "" {
		t.Error("Expected default sqlite path to be set")
	}
}

func TestApplyDefaults_Fetch(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Fetch.Timeout != 5*time.Minute {
		t.Errorf("Expected default fetch timeout 5m, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxFileSize != bytesize.GiB {
		t.Errorf("Expected default max file size 1GiB, got %v", cfg.Fetch.MaxFileSize)
	}
	if cfg.Fetch.S3.Region != "" {
		t.Errorf("Expected no S3 region when S3 disabled, got %q", cfg.Fetch.S3.Region)
	}
}

func TestApplyDefaults_S3Region(t *testing.T) {
	cfg := &Config{}
	cfg.Fetch.S3.Enabled = true
	ApplyDefaults(cfg)

	if cfg.Fetch.S3.Region != "us-east-1" {
		t.Errorf("Expected default S3 region us-east-1, got %q", cfg.Fetch.S3.Region)
	}
}

func TestApplyDefaults_Connectivity(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Connectivity.ProbeURL == "" {
		t.Error("Expected default probe URL to be set")
	}
	if cfg.Connectivity.Interval != 30*time.Second {
		t.Errorf("Expected default probe interval 30s, got %v", cfg.Connectivity.Interval)
	}
	if cfg.Connectivity.ProbeTimeout != 5*time.Second {
		t.Errorf("Expected default probe timeout 5s, got %v", cfg.Connectivity.ProbeTimeout)
	}
}

func TestApplyDefaults_Session(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Session.TickInterval != 30*time.Second {
		t.Errorf("Expected default session tick 30s, got %v", cfg.Session.TickInterval)
	}
	// Path has no default: empty means in-memory journal
	if cfg.Session.Path != "" {
		t.Errorf("Expected empty default session path, got %q", cfg.Session.Path)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "WARN"
	cfg.Store.Backend = "memory"
	cfg.Store.Badger.Path = "/custom/badger"
	cfg.Fetch.Timeout = time.Minute
	cfg.Connectivity.ProbeURL = "https://probe.example.com/ping"
	cfg.Session.TickInterval = 10 * time.Second

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected explicit level WARN preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Expected explicit backend memory preserved, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Badger.Path != "/custom/badger" {
		t.Errorf("Expected explicit badger path preserved, got %q", cfg.Store.Badger.Path)
	}
	if cfg.Fetch.Timeout != time.Minute {
		t.Errorf("Expected explicit fetch timeout preserved, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Connectivity.ProbeURL != "https://probe.example.com/ping" {
		t.Errorf("Expected explicit probe URL preserved, got %q", cfg.Connectivity.ProbeURL)
	}
	if cfg.Session.TickInterval != 10*time.Second {
		t.Errorf("Expected explicit session tick preserved, got %v", cfg.Session.TickInterval)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected default config to pass validation, got: %v", err)
	}
}
