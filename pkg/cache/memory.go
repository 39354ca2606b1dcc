package cache

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded entries in process memory. Entries are stored
// serialized so callers never share slices with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	m.mu.RLock()
	data, ok := m.data[key.String()]
	m.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues(string(BackendMemory)).Inc()
		return nil, ErrCacheMiss
	}

	entry, err := decodeEntry(data)
	if err != nil {
		CacheErrors.WithLabelValues(string(BackendMemory), "get").Inc()
		return nil, err
	}

	CacheHits.WithLabelValues(string(BackendMemory)).Inc()
	return entry, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, key Key, entry *Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		CacheErrors.WithLabelValues(string(BackendMemory), "put").Inc()
		return err
	}

	m.mu.Lock()
	m.data[key.String()] = data
	m.mu.Unlock()

	CacheSize.WithLabelValues(string(BackendMemory)).Set(float64(len(data)))
	return nil
}

// Ping implements Store.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
