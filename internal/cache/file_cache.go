// Package cache stores raw API responses for a short time so that several
// boards polling the same station share one upstream call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const entryExt = ".mpk"

// FileCache implements a file-based cache with TTL
type FileCache struct {
	dir string
	ttl time.Duration
}

// entry is a cached response with its expiry, stored as msgpack
type entry struct {
	Data      []byte    `msgpack:"data"`
	ExpiresAt time.Time `msgpack:"expires_at"`
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// NewFileCache creates a new file cache
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	return &FileCache{
		dir: dir,
		ttl: ttl,
	}, nil
}

// DefaultCacheDir returns the default cache directory
func DefaultCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "metro")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "metro-cache")
	}

	return filepath.Join(home, ".cache", "metro")
}

// Dir returns the cache directory
func (c *FileCache) Dir() string {
	return c.dir
}

// keyToFilename converts a cache key (URL) to a filename
func (c *FileCache) keyToFilename(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+entryExt)
}

// readEntry loads an entry, removing files that are corrupt or expired
func readEntry(filename string, now time.Time) (*entry, bool) {
	// #nosec G304 -- filename is derived from a hash or from ReadDir within the cache directory
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		_ = os.Remove(filename)
		return nil, false
	}
	if e.expired(now) {
		_ = os.Remove(filename)
		return nil, false
	}
	return &e, true
}

// Get retrieves a value from the cache
func (c *FileCache) Get(key string) ([]byte, bool) {
	e, ok := readEntry(c.keyToFilename(key), time.Now())
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// Set stores a value in the cache
func (c *FileCache) Set(key string, value []byte) error {
	data, err := msgpack.Marshal(&entry{
		Data:      value,
		ExpiresAt: time.Now().Add(c.ttl),
	})
	if err != nil {
		return err
	}

	// write then rename so a concurrent reader never sees a partial entry
	tmp, err := os.CreateTemp(c.dir, "entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.keyToFilename(key))
}

// Clear removes all cache entries
func (c *FileCache) Clear() error {
	return c.sweep(func(string) bool { return true })
}

// Cleanup removes expired entries
func (c *FileCache) Cleanup() error {
	now := time.Now()
	return c.sweep(func(filename string) bool {
		_, ok := readEntry(filename, now)
		return !ok
	})
}

func (c *FileCache) sweep(remove func(filename string) bool) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryExt {
			continue
		}
		filename := filepath.Join(c.dir, de.Name())
		if remove(filename) {
			_ = os.Remove(filename)
		}
	}

	return nil
}
