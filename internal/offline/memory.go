package offline

import (
	"net/http"
	"sync"
)

// MemoryStore is an in-memory Store. It is the default when no cache
// file is configured and the backend used throughout the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]*Entry
	open    string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string]*Entry)}
}

func (s *MemoryStore) Open(version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[version]; !ok {
		s.buckets[version] = make(map[string]*Entry)
	}
	s.open = version
	return nil
}

func (s *MemoryStore) Buckets() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.buckets))
	for name := range s.buckets {
		names = append(names, name)
	}
	return names, nil
}

func (s *MemoryStore) Purge(keep string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range s.buckets {
		if name != keep {
			delete(s.buckets, name)
		}
	}
	return nil
}

func (s *MemoryStore) Get(key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.open == "" {
		return nil, ErrNoBucket
	}
	e, ok := s.buckets[s.open][key]
	if !ok {
		return nil, ErrNotFound
	}
	return e.clone(), nil
}

func (s *MemoryStore) Put(key string, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open == "" {
		return ErrNoBucket
	}
	s.buckets[s.open][key] = e.clone()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// clone copies an entry so callers cannot mutate stored state.
func (e *Entry) clone() *Entry {
	var header http.Header
	if e.Header != nil {
		header = e.Header.Clone()
	}
	body := make([]byte, len(e.Body))
	copy(body, e.Body)
	return &Entry{Status: e.Status, Header: header, Body: body}
}
