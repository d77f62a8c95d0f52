// Package syncmap provides a generic map guarded by a reader/writer lock.
package syncmap

import "sync"

// Map is a regular map but synchronized with a reader/writer mutex.
type Map[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// New returns a new syncmap.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// TryLoad returns the value for a key without waiting for a writer. If the
// map is being written, locked is false and the lookup did not happen.
func (m *Map[K, V]) TryLoad(key K) (v V, ok, locked bool) {
	if !m.mu.TryRLock() {
		return v, false, false
	}
	defer m.mu.RUnlock()
	v, ok = m.m[key]
	return v, ok, true
}

// Store sets the value for a key.
func (m *Map[K, V]) Store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
}

// LoadAndDelete deletes a key and returns the value it had, if any.
func (m *Map[K, V]) LoadAndDelete(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	delete(m.m, key)
	return v, ok
}
