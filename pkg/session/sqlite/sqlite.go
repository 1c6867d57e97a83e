// Package sqlite implements session.Store on a local SQLite journal.
//
// The journal is the durable default for reading-session snapshots:
// progress written here survives crashes and can be synced to a remote
// stats backend later by the host.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pagekeep/pagekeep/internal/logger"
	"github.com/pagekeep/pagekeep/pkg/session"
)

// sessionRow is the GORM model for one journaled session.
type sessionRow struct {
	SessionID   string    `gorm:"column:session_id;primaryKey"`
	BookID      string    `gorm:"column:book_id;index"`
	StartPage   int       `gorm:"column:start_page"`
	LastPage    int       `gorm:"column:last_page"`
	PagesRead   int       `gorm:"column:pages_read"`
	MinutesRead int       `gorm:"column:minutes_read"`
	StartedAt   time.Time `gorm:"column:started_at;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (sessionRow) TableName() string {
	return "reading_sessions"
}

// SessionStore journals session snapshots into a SQLite database file.
type SessionStore struct {
	db *gorm.DB
}

// New opens (or creates) the journal database at path and migrates the
// schema. The same pragmas as the book store apply: WAL for concurrent
// readers, a 5 second busy timeout for lock contention.
func New(path string) (*SessionStore, error) {
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

	if err := db.AutoMigrate(&sessionRow{}); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	logger.Debug("opened sqlite session journal", logger.KeyPath, path)

	return &SessionStore{db: db}, nil
}

// UpsertSession inserts or fully replaces the snapshot for
// rec.SessionID.
func (s *SessionStore) UpsertSession(ctx context.Context, rec session.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.SessionID == "" {
		return fmt.Errorf("session ID must not be empty")
	}

	row := sessionRow{
		SessionID:   rec.SessionID,
		BookID:      rec.BookID,
		StartPage:   rec.StartPage,
		LastPage:    rec.LastPage,
		PagesRead:   rec.PagesRead,
		MinutesRead: rec.MinutesRead,
		StartedAt:   rec.StartedAt,
		UpdatedAt:   rec.UpdatedAt,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to journal session: %w", err)
	}
	return nil
}

// ListSessions returns every journaled session ordered by start time,
// oldest first. Hosts use this to sync the journal to a remote backend.
func (s *SessionStore) ListSessions(ctx context.Context) ([]session.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []sessionRow
	err := s.db.WithContext(ctx).Order("started_at ASC, session_id ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	records := make([]session.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, session.Record{
			SessionID:   row.SessionID,
			BookID:      row.BookID,
			StartPage:   row.StartPage,
			LastPage:    row.LastPage,
			PagesRead:   row.PagesRead,
			MinutesRead: row.MinutesRead,
			StartedAt:   row.StartedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return records, nil
}

// DeleteSessions removes journaled sessions by ID, after a successful
// sync.
func (s *SessionStore) DeleteSessions(ctx context.Context, sessionIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(sessionIDs) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Where("session_id IN ?", sessionIDs).Delete(&sessionRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SessionStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
