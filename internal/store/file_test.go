package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alertline/go-alert-relay/internal/domain"
)

func sampleRecords() []domain.ChatRecord {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.ChatRecord{
		{ID: "100", Label: "alice", RegisteredAt: base},
		{ID: "-200", Label: "ops group", RegisteredAt: base.Add(time.Minute)},
		{ID: "300", Label: "unknown", RegisteredAt: base.Add(2 * time.Minute)},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	s := NewFileStore(path)

	want := sampleRecords()
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load returned %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Label != want[i].Label {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].RegisteredAt.Equal(want[i].RegisteredAt) {
			t.Errorf("record %d RegisteredAt = %v, want %v", i, got[i].RegisteredAt, want[i].RegisteredAt)
		}
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Load on missing file returned %d records, want 0", len(got))
	}
}

func TestFileStoreLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatal("Load on malformed file succeeded, want error")
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")
	s := NewFileStore(path)

	if err := s.Save(sampleRecords()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(sampleRecords()[:1]); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Load returned %d records after overwrite, want 1", len(got))
	}

	// Temp file must not linger after a successful rename.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present after Save")
	}
}

func TestNewFileStoreMkdir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "chat_ids.json")
	s, err := NewFileStoreMkdir(path)
	if err != nil {
		t.Fatalf("NewFileStoreMkdir: %v", err)
	}
	if err := s.Save(sampleRecords()); err != nil {
		t.Fatalf("Save into created dir: %v", err)
	}
}
