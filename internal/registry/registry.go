// Package registry holds the deduplicated, ordered set of known chat
// destinations and its write-through persistence. It is the only shared
// mutable state in the process: the polling loop, the Telegram webhook, and
// the relay handlers all go through it.
package registry

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alertline/go-alert-relay/internal/domain"
	"github.com/alertline/go-alert-relay/internal/store"
)

// Registry is the in-memory chat set backed by a persisted snapshot.
//
// Invariants:
//   - at most one record per chat id; re-registration is a no-op and never
//     updates the label;
//   - record order is discovery order;
//   - the default chat id is the externally configured value when present,
//     otherwise the first record ever discovered, and is never reassigned;
//   - every mutation flushes the full snapshot before Register returns.
//
// All methods are safe for concurrent use. A single mutex covers the
// check-then-append-then-persist sequence, so two concurrent discoveries of
// the same id produce exactly one isNew outcome.
type Registry struct {
	mu      sync.Mutex
	records []domain.ChatRecord
	index   map[string]int // chat id -> position in records

	defaultID  string
	configured bool // default came from config, not auto-assignment

	store store.SnapshotStore
	log   zerolog.Logger
	now   func() time.Time
}

// New builds a Registry over st and loads the persisted snapshot.
// A missing or malformed snapshot starts the registry empty; the malformed
// case is logged and never fails the process. When defaultChatID is non-empty
// it takes precedence over auto-assignment permanently.
func New(st store.SnapshotStore, defaultChatID string, log zerolog.Logger) *Registry {
	r := &Registry{
		index:      make(map[string]int),
		defaultID:  defaultChatID,
		configured: defaultChatID != "",
		store:      st,
		log:        log,
		now:        time.Now,
	}

	records, err := st.Load()
	if err != nil {
		log.Warn().Err(err).Msg("chat snapshot unreadable, starting with empty registry")
		return r
	}
	for _, rec := range records {
		if _, dup := r.index[rec.ID]; dup {
			continue
		}
		r.index[rec.ID] = len(r.records)
		r.records = append(r.records, rec)
		if !r.configured && r.defaultID == "" {
			r.defaultID = rec.ID
		}
	}
	log.Info().Int("chats", len(r.records)).Str("default_chat_id", r.defaultID).Msg("chat registry loaded")
	return r
}

// Register records a chat id if it has not been seen before.
//
// For a known id it returns the existing record, isNew=false, and performs no
// write. For a new id it appends a record, persists the full snapshot, and
// auto-assigns the default destination when none is set yet. A persistence
// failure is returned to the caller but the in-memory insert stands; the
// record will be flushed with the next successful mutation.
func (r *Registry) Register(id, label string) (domain.ChatRecord, bool, error) {
	if label == "" {
		label = "unknown"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pos, ok := r.index[id]; ok {
		return r.records[pos], false, nil
	}

	rec := domain.ChatRecord{
		ID:           id,
		Label:        label,
		RegisteredAt: r.now().UTC(),
		Position:     len(r.records),
	}
	r.index[id] = len(r.records)
	r.records = append(r.records, rec)

	if r.defaultID == "" {
		r.defaultID = id
		r.log.Info().Str("chat_id", id).Msg("default chat assigned")
	}

	if err := r.store.Save(r.records); err != nil {
		r.log.Error().Err(err).Str("chat_id", id).Msg("chat snapshot flush failed, keeping in-memory record")
		return rec, true, err
	}

	r.log.Info().Str("chat_id", id).Str("label", label).Int("chats", len(r.records)).Msg("chat registered")
	return rec, true, nil
}

// All returns a copy of every record in discovery order. Mutating the
// returned slice does not affect the registry.
func (r *Registry) All() []domain.ChatRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ChatRecord, len(r.records))
	copy(out, r.records)
	return out
}

// DefaultChatID returns the default destination, or "" when none exists.
func (r *Registry) DefaultChatID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultID
}

// Count returns the number of known chats.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
