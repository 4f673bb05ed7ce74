package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.figma.com/v1"
	defaultRetries = 3
	defaultBackoff = 2 * time.Second
)

var (
	ErrMissingToken = errors.New("figma: access token is required")
	ErrInvalidToken = errors.New("figma: token is invalid or has no access to the file")
	ErrNotFound     = errors.New("figma: file not found")
)

// APIError is returned for any non-success response from the Figma API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("figma: API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("figma: API request failed with status %d: %s", e.StatusCode, body)
}

// Client talks to the Figma REST API with retries for rate limits and
// transient server errors.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	backoff     time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the base delay between retries. Attempt n waits n*d.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a Figma API client for the given personal access token.
// The transport keeps HTTP/1.1 and a long timeout since file payloads can be
// very large.
func NewClient(accessToken string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		ForceAttemptHTTP2:   false,
	}
	c := &Client{
		accessToken: strings.TrimSpace(accessToken),
		baseURL:     DefaultBaseURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		maxRetries: defaultRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetFile fetches the raw file JSON. When nodeID is set the request is
// narrowed to that node. Requests are retried on 429 and 5xx responses.
func (c *Client) GetFile(ctx context.Context, fileKey, nodeID string) (json.RawMessage, error) {
	if c.accessToken == "" {
		return nil, ErrMissingToken
	}
	endpoint := fmt.Sprintf("%s/files/%s", c.baseURL, url.PathEscape(fileKey))
	if nodeID != "" {
		endpoint += "?" + url.Values{"ids": {nodeID}}.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, retry, err := c.do(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("get file %s: %w", fileKey, ctx.Err())
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return nil, lastErr
}

// do performs one request. retry reports whether the failure is transient.
func (c *Client) do(ctx context.Context, endpoint string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Figma-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("execute request: %w", ctx.Err())
		}
		return nil, true, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidToken, &APIError{StatusCode: resp.StatusCode, Body: string(body)})
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: %w", ErrNotFound, &APIError{StatusCode: resp.StatusCode, Body: string(body)})
	default:
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}
