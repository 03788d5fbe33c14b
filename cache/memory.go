package cache

import (
	"sync"
)

// Memory is a process-local Store. Values are held as-is, so every reader
// of a key shares the value that was set. Expiry is not supported, entries
// live until they are deleted.
type Memory struct {
	mu    sync.RWMutex
	items map[string]interface{}
}

// NewMemory returns an empty Memory store
func NewMemory() *Memory {
	return &Memory{items: map[string]interface{}{}}
}

// Get returns the value stored under key. dst is unused as nothing is decoded.
func (m *Memory) Get(key string, _ interface{}) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	return v, ok
}

// Set stores data under key, replacing any previous value
func (m *Memory) Set(key string, data interface{}, _ int32) {
	m.mu.Lock()
	m.items[key] = data
	m.mu.Unlock()
}

// Delete removes key
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// Len reports how many keys are held
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
