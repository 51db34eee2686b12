package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedis_Key(t *testing.T) {
	c := newRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), time.Second, nil)
	defer func() { _ = c.Close() }()

	if got := c.key("A01"); got != "metro:A01" {
		t.Errorf("key() = %q, want %q", got, "metro:A01")
	}
}

func TestRedis_ErrorsAreMisses(t *testing.T) {
	c := newRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}), time.Second, discardLogger())
	defer func() { _ = c.Close() }()

	if _, ok := c.Get("A01"); ok {
		t.Error("Get() returned true with no server")
	}
	if err := c.Set("A01", []byte("v")); err == nil {
		t.Error("Set() expected error with no server")
	}
}
