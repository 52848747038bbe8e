package store

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/alertline/go-alert-relay/internal/domain"
)

// SQLiteStore persists the registry snapshot in a SQLite database. It keeps
// the same full-replace semantics as FileStore: Save rewrites the chats table
// inside one transaction, with a position column preserving discovery order.
// Durability is stronger than the JSON file (WAL journal), but the registry's
// availability-over-durability contract is unchanged.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database, applies PRAGMAs, and
// migrates the chats table.
func OpenSQLite(path string) (*SQLiteStore, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.AutoMigrate(&domain.ChatRecord{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an existing GORM handle; the caller owns migration.
// Used by tests with in-memory databases.
func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load returns all records ordered by their snapshot position. An empty or
// freshly migrated database yields an empty slice.
func (s *SQLiteStore) Load() ([]domain.ChatRecord, error) {
	var records []domain.ChatRecord
	if err := s.db.Order("position ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save replaces the full set of records in one transaction, assigning
// positions from slice order.
func (s *SQLiteStore) Save(records []domain.ChatRecord) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&domain.ChatRecord{}).Error; err != nil {
			return err
		}
		for i := range records {
			rec := records[i]
			rec.Position = i
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
