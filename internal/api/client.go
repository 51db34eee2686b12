package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/metroboard/metro/internal/board"
	"github.com/metroboard/metro/internal/cache"
	"github.com/metroboard/metro/internal/models"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultCacheTTL = 10 * time.Second

	maxErrorBody = 4 << 10
)

// Cache interface for caching HTTP responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Client is the API client for the WMATA predictions service
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      Cache
	logger     *slog.Logger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at a different API host
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithCache enables caching with the provided cache implementation
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithDefaultCache enables caching with the default file cache
func WithDefaultCache() ClientOption {
	return func(c *Client) {
		fc, err := cache.NewFileCache(cache.DefaultCacheDir(), defaultCacheTTL)
		if err == nil {
			c.cache = fc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new API client authenticated with apiKey
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingField("api_key")
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: BaseURL,
		apiKey:  apiKey,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With("component", "wmata_client")
	return c, nil
}

// GetPredictions fetches and decodes next-train predictions for a station
func (c *Client) GetPredictions(ctx context.Context, stationCode string) ([]models.ArrivalRecord, error) {
	body, err := c.GetPredictionsRaw(ctx, stationCode)
	if err != nil {
		return nil, err
	}
	return board.Decode(body)
}

// GetPredictionsRaw fetches predictions for a station and returns raw JSON
func (c *Client) GetPredictionsRaw(ctx context.Context, stationCode string) (json.RawMessage, error) {
	code := strings.ToUpper(strings.TrimSpace(stationCode))
	if code == "" {
		return nil, ErrMissingField("station")
	}
	if strings.ContainsAny(code, "/?#") {
		return nil, ErrInvalidFormat("station", "station code such as A01")
	}

	reqURL := c.baseURL + EndpointPredictions + url.PathEscape(code)

	return c.doRequest(ctx, reqURL, decodesAsPredictions)
}

func decodesAsPredictions(body []byte) error {
	_, err := board.Decode(body)
	return err
}

// doRequest performs an HTTP GET request with optional caching. A body
// that fails check is returned but not cached.
func (c *Client) doRequest(ctx context.Context, reqURL string, check func([]byte) error) ([]byte, error) {
	endpoint := extractEndpoint(reqURL)

	// Check cache first
	if c.cache != nil {
		if data, ok := c.cache.Get(reqURL); ok {
			c.logger.Debug("cache hit", "endpoint", endpoint)
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "endpoint", endpoint, "request_id", requestID, "error", err)
		if ctx.Err() != nil {
			return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())}
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
		}
		return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	// Handle non-OK status codes with proper error types
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("unexpected status", "endpoint", endpoint, "request_id", requestID, "status", resp.StatusCode)
		apiErr := NewAPIError(resp.StatusCode, resp.Status, endpoint)
		apiErr.Message = errorMessage(resp.Body)
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("request done",
		"endpoint", endpoint,
		"request_id", requestID,
		"size_bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// Store in cache
	if c.cache != nil {
		if check != nil {
			if err := check(body); err != nil {
				c.logger.Debug("not caching undecodable body", "endpoint", endpoint, "request_id", requestID, "error", err)
				return body, nil
			}
		}
		_ = c.cache.Set(reqURL, body)
	}

	return body, nil
}

// errorMessage returns the message of a JSON error body such as
// {"statusCode":401,"message":"Access denied ..."}, or "" if there is none.
func errorMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || json.Unmarshal(data, &body) != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}

// extractEndpoint extracts the endpoint path from a full URL
func extractEndpoint(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	return u.Path
}
