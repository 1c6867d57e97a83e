// Package sqlite implements store.Store on SQLite via GORM.
//
// Hosts that already ship SQLite can keep the offline cache in the same
// database technology as the rest of their data. Atomicity across the
// metadata and blob tables comes from wrapping every mutation in a
// single SQL transaction.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pagekeep/pagekeep/internal/logger"
)

// BookStore is a store.Store backed by a SQLite database file.
type BookStore struct {
	db *gorm.DB
}

// New opens (or creates) the SQLite database at path and migrates the
// schema.
//
// SQLite pragmas for better concurrent access:
//   - journal_mode(WAL): concurrent readers alongside the single writer
//   - busy_timeout(5000): wait up to 5 seconds when the database is locked
func New(path string) (*BookStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&bookMetadataRow{}, &bookBlobRow{}); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	logger.Debug("opened sqlite book store",
		logger.KeyBackend, "sqlite",
		logger.KeyPath, path)

	return &BookStore{db: db}, nil
}

// Healthcheck pings the underlying database.
func (s *BookStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *BookStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// isBusyError checks if the error is a SQLite lock contention error that
// survived the busy timeout.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY")
}

// convertNotFoundError converts gorm.ErrRecordNotFound to the domain error.
func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
