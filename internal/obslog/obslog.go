// Package obslog keeps a bounded in-memory ring of recent relay events for
// the /logs endpoint. It is observability only: nothing in the registry or
// relay logic depends on it, and when the ring is full the oldest events are
// silently dropped.
package obslog

import (
	"sync"
	"time"
)

// Event is one observable relay occurrence.
type Event struct {
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"` // e.g. "alert", "broadcast", "telegram_update"
	ChatID string    `json:"chat_id,omitempty"`
	OK     bool      `json:"ok"`
	Detail string    `json:"detail,omitempty"`
}

// Ring is a fixed-capacity circular buffer of events, newest overwriting
// oldest. Safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	count int
}

// NewRing returns a Ring holding at most capacity events. A capacity below 1
// is coerced to 1.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Event, capacity)}
}

// Record appends an event, stamping it with the current time when unset.
func (r *Ring) Record(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	r.mu.Lock()
	r.buf[r.next] = ev
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
}

// Recent returns up to n events, newest first. n <= 0 returns everything
// retained.
func (r *Ring) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

// Len returns the number of retained events.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
