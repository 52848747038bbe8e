package registry

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alertline/go-alert-relay/internal/domain"
	"github.com/alertline/go-alert-relay/internal/store"
)

// ----- Fake store -----

type fakeStore struct {
	mu      sync.Mutex
	records []domain.ChatRecord
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeStore) Load() ([]domain.ChatRecord, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.records, nil
}

func (f *fakeStore) Save(records []domain.ChatRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append([]domain.ChatRecord(nil), records...)
	return nil
}

func newTestRegistry(st store.SnapshotStore, defaultID string) *Registry {
	return New(st, defaultID, zerolog.Nop())
}

// ----- Tests -----

func TestRegisterIdempotent(t *testing.T) {
	st := &fakeStore{}
	r := newTestRegistry(st, "")

	rec1, isNew, err := r.Register("100", "alice")
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if !isNew {
		t.Fatal("first Register: isNew = false, want true")
	}

	rec2, isNew, err := r.Register("100", "other label")
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if isNew {
		t.Fatal("second Register: isNew = true, want false")
	}
	if rec2.Label != rec1.Label {
		t.Errorf("re-registration updated label to %q, want %q unchanged", rec2.Label, rec1.Label)
	}
	if r.Count() != 1 {
		t.Fatalf("Count = %d, want 1", r.Count())
	}
	if st.saves != 1 {
		t.Errorf("store saved %d times, want 1 (no write on duplicate)", st.saves)
	}
}

func TestDefaultAssignedOnce(t *testing.T) {
	r := newTestRegistry(&fakeStore{}, "")

	if got := r.DefaultChatID(); got != "" {
		t.Fatalf("DefaultChatID before any registration = %q, want empty", got)
	}

	r.Register("A", "first")
	r.Register("B", "second")
	r.Register("C", "third")

	if got := r.DefaultChatID(); got != "A" {
		t.Fatalf("DefaultChatID = %q, want %q", got, "A")
	}
}

func TestConfiguredDefaultWins(t *testing.T) {
	r := newTestRegistry(&fakeStore{}, "configured")

	r.Register("A", "first")
	if got := r.DefaultChatID(); got != "configured" {
		t.Fatalf("DefaultChatID = %q, want configured value", got)
	}
}

func TestPersistFailureKeepsRecord(t *testing.T) {
	st := &fakeStore{saveErr: errors.New("disk full")}
	r := newTestRegistry(st, "")

	_, isNew, err := r.Register("100", "alice")
	if err == nil {
		t.Fatal("Register with failing store: err = nil, want persistence error")
	}
	if !isNew {
		t.Fatal("Register with failing store: isNew = false, want true")
	}

	// The in-memory insert must survive the flush failure.
	if r.Count() != 1 {
		t.Fatalf("Count = %d, want 1", r.Count())
	}
	if _, isNew, _ := r.Register("100", "alice"); isNew {
		t.Fatal("record lost after persistence failure")
	}
}

func TestLoadMalformedStartsEmpty(t *testing.T) {
	st := &fakeStore{loadErr: errors.New("corrupt snapshot")}
	r := newTestRegistry(st, "")
	if r.Count() != 0 {
		t.Fatalf("Count after malformed load = %d, want 0", r.Count())
	}

	// Registry must still be usable.
	if _, isNew, err := r.Register("100", "alice"); err != nil || !isNew {
		t.Fatalf("Register after malformed load = (isNew=%v, err=%v)", isNew, err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := newTestRegistry(&fakeStore{}, "")
	r.Register("A", "first")
	r.Register("B", "second")

	records := r.All()
	records[0].ID = "mutated"

	if got := r.All()[0].ID; got != "A" {
		t.Fatalf("caller mutation leaked into registry: first id = %q", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	fs := store.NewFileStore(path)

	r1 := newTestRegistry(fs, "")
	r1.Register("A", "alice")
	r1.Register("B", "bob")
	r1.Register("C", "carol")

	// A fresh registry over the same file reproduces records and default.
	r2 := newTestRegistry(fs, "")
	if r2.Count() != 3 {
		t.Fatalf("reloaded Count = %d, want 3", r2.Count())
	}
	want := []string{"A", "B", "C"}
	for i, rec := range r2.All() {
		if rec.ID != want[i] {
			t.Errorf("reloaded record %d id = %q, want %q", i, rec.ID, want[i])
		}
	}
	if got := r2.DefaultChatID(); got != "A" {
		t.Fatalf("reloaded DefaultChatID = %q, want %q", got, "A")
	}
}

func TestConcurrentDiscoverySingleWinner(t *testing.T) {
	st := &fakeStore{}
	r := newTestRegistry(st, "")

	const workers = 32
	var wg sync.WaitGroup
	newCount := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, isNew, _ := r.Register("contested", "label")
			newCount <- isNew
		}()
	}
	wg.Wait()
	close(newCount)

	wins := 0
	for isNew := range newCount {
		if isNew {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("%d goroutines observed isNew=true, want exactly 1", wins)
	}
	if r.Count() != 1 {
		t.Fatalf("Count = %d, want 1", r.Count())
	}
	if st.saves != 1 {
		t.Errorf("store saved %d times, want 1", st.saves)
	}
}
