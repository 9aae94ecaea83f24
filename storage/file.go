package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists each key as a JSON file in a data directory. It is
// the default backend and mirrors the single-writer, last-write-wins
// semantics of the browser storage it replaces.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir %q: %v", ErrUnavailable, dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrUnavailable, key, err)
	}
	return data, nil
}

func (s *FileStore) Write(key string, value []byte) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrUnavailable, key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrUnavailable, key, err)
	}
	return nil
}
