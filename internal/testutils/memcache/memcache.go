// Package memcache is a map-backed cache.Cache for unit tests.
package memcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bookshelf-api/pkg/cache"
)

// Cache stores JSON like Redis does. TTLs are ignored.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
	Deleted []string
}

var _ cache.Cache = (*Cache)(nil)

func New() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

func (m *Cache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	data, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *Cache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

func (m *Cache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
		m.Deleted = append(m.Deleted, k)
	}
	return nil
}

func (m *Cache) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if data, ok := m.entries[key]; ok {
		if err := json.Unmarshal(data, &n); err != nil {
			return 0, err
		}
	}
	n++
	data, err := json.Marshal(n)
	if err != nil {
		return 0, err
	}
	m.entries[key] = data
	return n, nil
}

func (m *Cache) Ping(context.Context) error { return nil }

func (m *Cache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}
