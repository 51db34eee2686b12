package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/metroboard/metro/internal/api"
	"github.com/metroboard/metro/internal/board"
	"github.com/metroboard/metro/internal/cache"
	"github.com/metroboard/metro/internal/testutil"
)

func TestCreateClient_UsesAPIURLAndCache(t *testing.T) {
	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, testutil.SamplePredictionsResponse))
	defer ms.Close()

	flagAPIURL = ms.URL
	t.Cleanup(func() { flagAPIURL = "" })

	cfg := runnerConfig()
	cfg.Cache.Backend = cache.BackendMemory

	fetcher, closeCache, err := createClient(cfg, discardLogger)
	testutil.AssertNil(t, err)
	defer func() { _ = closeCache() }()

	for i := 0; i < 2; i++ {
		raw, err := fetcher.GetPredictionsRaw(context.Background(), cfg.StationCode())
		testutil.AssertNil(t, err)
		res := board.FromPayload(raw)
		testutil.AssertNil(t, res.Err)
		testutil.AssertEqual(t, res.Single.Real, 5)
	}

	// the second request is served from the memory cache
	testutil.AssertEqual(t, ms.RequestCount(), 1)
	testutil.AssertEqual(t, ms.LastRequest().Header.Get(api.HeaderAPIKey), "test-key")
	testutil.AssertContains(t, ms.LastRequest().URL.Path, api.EndpointPredictions+"A01")
}

func TestFetchBoards(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantReal  int
		wantParse bool
	}{
		{"ok", testutil.SamplePredictionsResponse, 5, false},
		{"malformed", testutil.SampleMalformedPredictionsResponse, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, tt.body))
			defer ms.Close()

			flagAPIURL = ms.URL
			t.Cleanup(func() { flagAPIURL = "" })
			cfg := runnerConfig()
			cfg.Cache.Backend = cache.BackendNone

			client, closeCache, err := newAPIClient(cfg, discardLogger)
			testutil.AssertNil(t, err)
			defer func() { _ = closeCache() }()

			res, err := fetchBoards(context.Background(), client, "A01")
			testutil.AssertNil(t, err)
			testutil.AssertEqual(t, res.Single.Real, tt.wantReal)

			var perr *board.ParseError
			testutil.AssertEqual(t, errors.As(res.Err, &perr), tt.wantParse)
			if tt.wantParse {
				testutil.AssertEqual(t, res.Single.Rows[0], board.Error().Rows[0])
			}
		})
	}
}

func TestFetchBoards_HTTPErrorIsReturned(t *testing.T) {
	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusUnauthorized, testutil.SampleUnauthorizedResponse))
	defer ms.Close()

	flagAPIURL = ms.URL
	t.Cleanup(func() { flagAPIURL = "" })
	cfg := runnerConfig()
	cfg.Cache.Backend = cache.BackendNone

	client, closeCache, err := newAPIClient(cfg, discardLogger)
	testutil.AssertNil(t, err)
	defer func() { _ = closeCache() }()

	_, err = fetchBoards(context.Background(), client, "A01")
	var ae *api.APIError
	testutil.AssertTrue(t, errors.As(err, &ae))
	testutil.AssertContains(t, err.Error(), "Access denied")
}

func TestCreateClient_UnknownCacheBackend(t *testing.T) {
	cfg := runnerConfig()
	cfg.Cache.Backend = "tape"

	_, closeCache, err := createClient(cfg, discardLogger)
	testutil.AssertError(t, err)
	testutil.AssertNil(t, closeCache())
}

func writeCacheEntry(t *testing.T, dir, key string, ttl time.Duration) {
	t.Helper()
	fc, err := cache.NewFileCache(dir, ttl)
	testutil.AssertNil(t, err)
	testutil.AssertNil(t, fc.Set(key, []byte(`{"Trains":[]}`)))
}

func TestCacheClear(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	flagConfig = filepath.Join(t.TempDir(), "config.yaml")
	data := "cache:\n  backend: file\n  dir: " + dir + "\n  ttl: 1m\n"
	testutil.AssertNil(t, os.WriteFile(flagConfig, []byte(data), 0o600))

	writeCacheEntry(t, dir, "a", time.Minute)
	writeCacheEntry(t, dir, "b", time.Minute)

	flagExpiredOnly = true
	t.Cleanup(func() { flagExpiredOnly = false })
	testutil.AssertNil(t, runCacheClear(&cobra.Command{}, nil))
	entries, err := os.ReadDir(dir)
	testutil.AssertNil(t, err)
	testutil.AssertLen(t, entries, 2)

	flagExpiredOnly = false
	testutil.AssertNil(t, runCacheClear(&cobra.Command{}, nil))
	entries, err = os.ReadDir(dir)
	testutil.AssertNil(t, err)
	testutil.AssertLen(t, entries, 0)
}

func TestCacheClear_RequiresFileBackend(t *testing.T) {
	resetFlags(t)
	flagNoCache = true

	err := runCacheClear(&cobra.Command{}, nil)
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "file")
}
