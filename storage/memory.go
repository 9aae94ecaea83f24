package storage

import (
	"sync"
)

// MemStore is a map-backed KV for tests and ephemeral runs. ReadErr and
// WriteErr, when set, are returned by every call to simulate backend
// outages.
type MemStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	ReadErr  error
	WriteErr error
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Read(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *MemStore) Write(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}
