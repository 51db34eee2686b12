package cache

import (
	"time"

	"github.com/bluele/gcache"
)

// DefaultMemorySize is the number of responses kept by NewMemory
const DefaultMemorySize = 256

// Memory is an in-process LRU cache with a fixed TTL
type Memory struct {
	lru gcache.Cache
}

// NewMemory creates an LRU cache holding up to size responses for ttl
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{
		lru: gcache.New(size).
			LRU().
			Expiration(ttl).
			Build(),
	}
}

// Get retrieves a value from the cache
func (m *Memory) Get(key string) ([]byte, bool) {
	v, err := m.lru.Get(key)
	if err != nil {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

// Set stores a value in the cache
func (m *Memory) Set(key string, value []byte) error {
	return m.lru.Set(key, value)
}

// Len returns the number of live entries
func (m *Memory) Len() int {
	return m.lru.Len(true)
}

// Clear removes all entries
func (m *Memory) Clear() {
	m.lru.Purge()
}
