package testutil

import "sync"

// MemoryStorage is an in-memory interfaces.Storage.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStorage builds an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Get implements interfaces.Storage.
func (m *MemoryStorage) Get(key []byte) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Set implements interfaces.Storage.
func (m *MemoryStorage) Set(key, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
}

// Delete implements interfaces.Storage.
func (m *MemoryStorage) Delete(key []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
}
