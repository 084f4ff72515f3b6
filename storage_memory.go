package gate

import "sync"

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage keeps both lifetimes in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[Lifetime]map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		values: map[Lifetime]map[string]string{
			Persistent: {},
			Ephemeral:  {},
		},
	}
}

func (m *MemoryStorage) Get(lifetime Lifetime, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[lifetime][key]
	return v, ok
}

func (m *MemoryStorage) Set(lifetime Lifetime, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.values[lifetime]
	if !ok {
		bucket = map[string]string{}
		m.values[lifetime] = bucket
	}
	bucket[key] = value
}

func (m *MemoryStorage) Remove(lifetime Lifetime, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[lifetime], key)
}

// EndSession drops the Ephemeral lifetime, as a browser does when it closes.
func (m *MemoryStorage) EndSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[Ephemeral] = map[string]string{}
}

// Len returns the number of keys held for lifetime.
func (m *MemoryStorage) Len(lifetime Lifetime) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values[lifetime])
}
