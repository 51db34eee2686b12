package cache

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_Backends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")

	tests := []struct {
		name    string
		opts    Options
		wantNil bool
		check   func(t *testing.T, s Store)
	}{
		{name: "empty is off", opts: Options{}, wantNil: true},
		{name: "none is off", opts: Options{Backend: BackendNone}, wantNil: true},
		{
			name: "file",
			opts: Options{Backend: BackendFile, Dir: dir, TTL: time.Minute},
			check: func(t *testing.T, s Store) {
				fc, ok := s.(*FileCache)
				if !ok {
					t.Fatalf("got %T, want *FileCache", s)
				}
				if fc.Dir() != dir {
					t.Errorf("Dir() = %q, want %q", fc.Dir(), dir)
				}
			},
		},
		{
			name: "memory",
			opts: Options{Backend: BackendMemory, TTL: time.Minute, Size: 4},
			check: func(t *testing.T, s Store) {
				if _, ok := s.(*Memory); !ok {
					t.Fatalf("got %T, want *Memory", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, closeFn, err := Open(tt.opts, discardLogger())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if closeFn == nil {
				t.Fatal("Open() returned nil close function")
			}
			defer func() { _ = closeFn() }()

			if tt.wantNil {
				if s != nil {
					t.Errorf("Open() = %T, want nil", s)
				}
				return
			}
			if err := s.Set("k", []byte("v")); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if got, ok := s.Get("k"); !ok || string(got) != "v" {
				t.Errorf("Get() = %q, %v", got, ok)
			}
			tt.check(t, s)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, closeFn, err := Open(Options{Backend: "memcached"}, discardLogger())
	if err == nil {
		t.Fatal("Open() expected error for unknown backend")
	}
	if closeFn == nil {
		t.Fatal("Open() returned nil close function")
	}
}

func TestOpen_RedisUnreachable(t *testing.T) {
	_, _, err := Open(Options{
		Backend: BackendRedis,
		TTL:     time.Second,
		Redis:   RedisOptions{Addr: "127.0.0.1:1"},
	}, discardLogger())
	if err == nil {
		t.Fatal("Open() expected error for unreachable redis")
	}
}
