package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alertline/go-alert-relay/internal/domain"
)

// FileStore persists the registry snapshot as a single JSON array on disk.
// Every Save rewrites the whole file through a temp file and rename, so a
// crash mid-write leaves the previous snapshot intact.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot file. A missing file yields an empty slice and no
// error; unreadable or malformed content yields an error for the caller to
// downgrade to an empty registry.
func (s *FileStore) Load() ([]domain.ChatRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.ChatRecord{}, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	var records []domain.ChatRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return records, nil
}

// Save serializes all records and atomically replaces the snapshot file.
func (s *FileStore) Save(records []domain.ChatRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}

// ensureDir is a small helper for callers that want the snapshot directory to
// exist before the first Save.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// NewFileStoreMkdir returns a FileStore after creating the parent directory
// of path when it does not exist yet.
func NewFileStoreMkdir(path string) (*FileStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return NewFileStore(path), nil
}
