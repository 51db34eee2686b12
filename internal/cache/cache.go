package cache

import (
	"fmt"
	"log/slog"
	"time"
)

// Backend names accepted by Open
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store is a byte cache keyed by request URL
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Options selects and configures a cache backend
type Options struct {
	Backend string
	TTL     time.Duration
	Dir     string
	Size    int
	Redis   RedisOptions
}

// Open builds the configured cache. A nil Store means caching is off.
// The returned close function is never nil.
func Open(opts Options, logger *slog.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case "", BackendNone:
		return nil, noop, nil
	case BackendFile:
		dir := opts.Dir
		if dir == "" {
			dir = DefaultCacheDir()
		}
		fc, err := NewFileCache(dir, opts.TTL)
		if err != nil {
			return nil, noop, fmt.Errorf("open file cache: %w", err)
		}
		return fc, noop, nil
	case BackendMemory:
		return NewMemory(opts.Size, opts.TTL), noop, nil
	case BackendRedis:
		ro := opts.Redis
		if ro.TTL == 0 {
			ro.TTL = opts.TTL
		}
		rc, err := NewRedis(ro, logger)
		if err != nil {
			return nil, noop, err
		}
		return rc, rc.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
