// Package store implements persistence for the chat registry snapshot.
// A snapshot is the flat, ordered sequence of every known chat record,
// rewritten in full on every registry mutation. Two backends are provided:
// a JSON file (default) and SQLite via GORM.
package store

import "github.com/alertline/go-alert-relay/internal/domain"

// SnapshotStore loads and saves the full registry snapshot.
//
// Load must tolerate a missing snapshot (return an empty slice, nil error).
// A malformed snapshot surfaces as an error; the registry treats it as empty
// rather than failing the process.
//
// Save replaces the entire persisted snapshot with the given records,
// preserving their order. Implementations need not be safe for concurrent
// use; the registry serializes all access.
type SnapshotStore interface {
	Load() ([]domain.ChatRecord, error)
	Save(records []domain.ChatRecord) error
}
