package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/metroboard/metro/internal/board"
	"github.com/metroboard/metro/internal/testutil"
)

const testKey = "test-key"

func TestNewClient(t *testing.T) {
	client, err := NewClient(testKey)
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, client != nil)
	testutil.AssertTrue(t, client.httpClient != nil)
	testutil.AssertEqual(t, client.baseURL, BaseURL)
	testutil.AssertEqual(t, client.httpClient.Timeout, defaultTimeout)
	testutil.AssertEqual(t, client.apiKey, testKey)
}

func TestNewClient_MissingKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		client, err := NewClient(key)
		testutil.AssertError(t, err)
		testutil.AssertTrue(t, client == nil)

		var ve *ValidationError
		testutil.AssertTrue(t, errors.As(err, &ve))
		testutil.AssertEqual(t, ve.Field, "api_key")
	}
}

func TestNewClient_WithTimeout(t *testing.T) {
	customTimeout := 30 * time.Second
	client, err := NewClient(testKey, WithTimeout(customTimeout))
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, client.httpClient.Timeout, customTimeout)
}

func TestNewClient_WithHTTPClient(t *testing.T) {
	customClient := &http.Client{Timeout: 5 * time.Second}
	client, err := NewClient(testKey, WithHTTPClient(customClient))
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, client.httpClient, customClient)
}

func TestNewClient_WithCache(t *testing.T) {
	mockCache := newMockCache()
	client, err := NewClient(testKey, WithCache(mockCache))
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, client.cache != nil)
}

func TestNewClient_WithBaseURL(t *testing.T) {
	client, err := NewClient(testKey, WithBaseURL("http://localhost:9999/"))
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, client.baseURL, "http://localhost:9999")
}

func TestGetPredictions_Success(t *testing.T) {
	ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Method, "GET")
		testutil.AssertEqual(t, r.URL.Path, EndpointPredictions+"A01")
		testutil.AssertEqual(t, r.Header.Get(HeaderAPIKey), testKey)
		testutil.AssertEqual(t, r.Header.Get("Cache-Control"), "no-cache")

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testutil.SamplePredictionsResponse))
	})
	defer ms.Close()

	client := newTestClient(ms.URL)

	trains, err := client.GetPredictions(context.Background(), "a01")
	testutil.AssertNil(t, err)
	testutil.AssertLen(t, trains, 5)
	testutil.AssertEqual(t, trains[0].DestinationName, "Glenmont")
	testutil.AssertEqual(t, string(trains[0].Min), "ARR")
	testutil.AssertEqual(t, trains[1].Group, "2")
	testutil.AssertEqual(t, string(trains[4].Min), "---")

	testutil.AssertEqual(t, ms.RequestCount(), 1)
}

func TestGetPredictions_RequestIDHeader(t *testing.T) {
	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, testutil.SampleEmptyPredictionsResponse))
	defer ms.Close()

	client := newTestClient(ms.URL)
	_, err := client.GetPredictions(context.Background(), "A01")
	testutil.AssertNil(t, err)
	_, err = client.GetPredictions(context.Background(), "A01")
	testutil.AssertNil(t, err)

	first := ms.Requests()[0].Header.Get(HeaderRequestID)
	second := ms.Requests()[1].Header.Get(HeaderRequestID)
	_, err = uuid.Parse(first)
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, first != second)
}

func TestGetPredictions_NumericMinutes(t *testing.T) {
	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, testutil.SampleNumericMinutesResponse))
	defer ms.Close()

	trains, err := newTestClient(ms.URL).GetPredictions(context.Background(), "C01")
	testutil.AssertNil(t, err)
	testutil.AssertLen(t, trains, 1)
	testutil.AssertEqual(t, string(trains[0].Min), "12")
}

func TestGetPredictions_Empty(t *testing.T) {
	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, testutil.SampleEmptyPredictionsResponse))
	defer ms.Close()

	trains, err := newTestClient(ms.URL).GetPredictions(context.Background(), "A01")
	testutil.AssertNil(t, err)
	testutil.AssertLen(t, trains, 0)
}

func TestGetPredictions_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"garbage", `invalid json`},
		{"bad record", testutil.SampleMalformedPredictionsResponse},
		{"null", `null`},
		{"no trains", `{"Trains":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, tt.body))
			defer ms.Close()

			trains, err := newTestClient(ms.URL).GetPredictions(context.Background(), "A01")
			testutil.AssertError(t, err)
			testutil.AssertLen(t, trains, 0)

			var pe *board.ParseError
			testutil.AssertTrue(t, errors.As(err, &pe))
			testutil.AssertFalse(t, IsFetchError(err))
		})
	}
}

func TestGetPredictions_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusInternalServerError, ErrServerError},
		{"not found", http.StatusNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := testutil.NewMockServer(testutil.RespondJSON(tt.status, testutil.SampleUnauthorizedResponse))
			defer ms.Close()

			_, err := newTestClient(ms.URL).GetPredictions(context.Background(), "A01")
			testutil.AssertError(t, err)
			testutil.AssertErrorIs(t, err, tt.target)
			testutil.AssertTrue(t, IsFetchError(err))

			var ae *APIError
			testutil.AssertTrue(t, errors.As(err, &ae))
			testutil.AssertEqual(t, ae.StatusCode, tt.status)
			testutil.AssertEqual(t, ae.Endpoint, EndpointPredictions+"A01")
			testutil.AssertContains(t, ae.Error(), "Access denied due to invalid subscription key")
		})
	}
}

func TestGetPredictions_HTTPErrorWithoutMessage(t *testing.T) {
	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusBadGateway, `<html>bad gateway</html>`))
	defer ms.Close()

	_, err := newTestClient(ms.URL).GetPredictions(context.Background(), "A01")
	var ae *APIError
	testutil.AssertTrue(t, errors.As(err, &ae))
	testutil.AssertEqual(t, ae.Message, "")
	testutil.AssertContains(t, ae.Error(), "API error 502")
}

func TestGetPredictions_MissingStation(t *testing.T) {
	client, err := NewClient(testKey)
	testutil.AssertNil(t, err)

	trains, err := client.GetPredictions(context.Background(), "  ")
	testutil.AssertError(t, err)
	testutil.AssertLen(t, trains, 0)

	var ve *ValidationError
	testutil.AssertTrue(t, errors.As(err, &ve))
	testutil.AssertEqual(t, ve.Field, "station")
}

func TestGetPredictions_RejectsPathInStation(t *testing.T) {
	client, err := NewClient(testKey)
	testutil.AssertNil(t, err)

	_, err = client.GetPredictionsRaw(context.Background(), "A01/../x")
	testutil.AssertError(t, err)
}

func TestGetPredictionsRaw_Success(t *testing.T) {
	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, testutil.SamplePredictionsResponse))
	defer ms.Close()

	rawJSON, err := newTestClient(ms.URL).GetPredictionsRaw(context.Background(), "A01")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, string(rawJSON), testutil.SamplePredictionsResponse)
}

func TestClient_WithCache(t *testing.T) {
	mockCache := newMockCache()

	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, testutil.SamplePredictionsResponse))
	defer ms.Close()

	client := newTestClient(ms.URL)
	client.cache = mockCache

	// First call - should hit the server
	_, err := client.GetPredictions(context.Background(), "A01")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, ms.RequestCount(), 1)

	// Second call - should use cache
	_, err = client.GetPredictions(context.Background(), "A01")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, ms.RequestCount(), 1)

	// Other stations are cached separately
	_, err = client.GetPredictions(context.Background(), "B01")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, ms.RequestCount(), 2)
}

func TestClient_ErrorsAreNotCached(t *testing.T) {
	mockCache := newMockCache()

	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusInternalServerError, `{}`))
	defer ms.Close()

	client := newTestClient(ms.URL)
	client.cache = mockCache

	_, err := client.GetPredictions(context.Background(), "A01")
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, len(mockCache.data), 0)
}

func TestClient_UndecodableBodyIsNotCached(t *testing.T) {
	mockCache := newMockCache()

	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, testutil.SampleMalformedPredictionsResponse))
	defer ms.Close()

	client := newTestClient(ms.URL)
	client.cache = mockCache

	// the raw body still reaches the caller, who shows the ERROR board
	raw, err := client.GetPredictionsRaw(context.Background(), "A01")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, string(raw), testutil.SampleMalformedPredictionsResponse)
	testutil.AssertEqual(t, len(mockCache.data), 0)

	_, err = client.GetPredictionsRaw(context.Background(), "A01")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, ms.RequestCount(), 2)
}

func TestClient_ContextCancellation(t *testing.T) {
	ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testutil.SamplePredictionsResponse))
	})
	defer ms.Close()

	client := newTestClient(ms.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPredictions(ctx, "A01")
	testutil.AssertError(t, err)
	testutil.AssertErrorIs(t, err, ErrTimeout)
	testutil.AssertTrue(t, IsFetchError(err))
}

func TestClient_Timeout(t *testing.T) {
	ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	defer ms.Close()

	client, err := NewClient(testKey, WithBaseURL(ms.URL), WithTimeout(20*time.Millisecond))
	testutil.AssertNil(t, err)

	_, err = client.GetPredictions(context.Background(), "A01")
	testutil.AssertError(t, err)
	testutil.AssertErrorIs(t, err, ErrTimeout)
	testutil.AssertTrue(t, IsFetchError(err))
}

func TestClient_ConnectionRefused(t *testing.T) {
	ms := testutil.NewMockServer(testutil.RespondJSON(http.StatusOK, `{}`))
	url := ms.URL
	ms.Close()

	_, err := newTestClient(url).GetPredictions(context.Background(), "A01")
	testutil.AssertError(t, err)
	testutil.AssertTrue(t, IsFetchError(err))

	var fe *FetchError
	testutil.AssertTrue(t, errors.As(err, &fe))
}

func TestExtractEndpoint(t *testing.T) {
	testutil.AssertEqual(t, extractEndpoint("https://api.wmata.com"+EndpointPredictions+"A01"), EndpointPredictions+"A01")
	testutil.AssertEqual(t, extractEndpoint("://bad"), "://bad")
}

// Mock cache implementation for testing
type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Helper to create a client with custom base URL for testing
func newTestClient(baseURL string) *Client {
	client, _ := NewClient(testKey, WithBaseURL(baseURL))
	return client
}
