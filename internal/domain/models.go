// Package domain defines the core data types shared across the relay:
// registered chat destinations, inbound alert requests, and the aggregated
// outcome of a broadcast fan-out.
package domain

import "time"

// ChatRecord is a single known destination in the Telegram chat registry.
// Records are discovered via the polling loop or the Telegram webhook and
// persisted as a flat snapshot; insertion order is discovery order.
//
// Fields:
//   - ID: the Telegram chat identifier (opaque string, unique in the registry).
//   - Label: best-effort display name ("unknown" when Telegram gives us none).
//   - RegisteredAt: time of first observation; later sightings never touch it.
//   - Position: snapshot ordering column used by the SQLite backend only.
type ChatRecord struct {
	ID           string    `json:"id"            gorm:"type:varchar(64);primaryKey"`
	Label        string    `json:"label"         gorm:"type:varchar(255);not null;default:'unknown'"`
	RegisteredAt time.Time `json:"registered_at" gorm:"not null"`
	Position     int       `json:"-"             gorm:"not null;index"`
}

// TableName returns the database table name for ChatRecord.
func (ChatRecord) TableName() string { return "chats" }

// AlertRequest is a normalized inbound alert, after payload parsing.
// ChatID is optional: the relay falls back to the default destination in
// single mode, or to every known destination in broadcast mode.
type AlertRequest struct {
	Secret string `json:"secret,omitempty"`
	ChatID string `json:"chat_id,omitempty"`
	Text   string `json:"text"`
}

// SendResult is the per-destination outcome of one fan-out attempt.
type SendResult struct {
	ChatID  string `json:"chat_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BroadcastResult aggregates a fan-out: one entry per attempted destination,
// in the same order the destinations were supplied. Attempted always equals
// len(Results); Succeeded counts the entries with Success set.
type BroadcastResult struct {
	Attempted int          `json:"attempted"`
	Succeeded int          `json:"succeeded"`
	Results   []SendResult `json:"results"`
}
