// Package platform talks to the game platform's public APIs and the third
// party mirrors of them. Every endpoint is exposed as a resolver tier.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel kinds for platform errors.
var (
	ErrStatus    = errors.New("unexpected status")
	ErrMalformed = errors.New("malformed response")
	ErrNotFound  = errors.New("no data for id")
)

// DefaultUserAgent identifies the site to the platform APIs.
const DefaultUserAgent = "SwansaPeacefulPlay/1.0"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client issues JSON GET requests with a bounded timeout.
type Client struct {
	http      *http.Client
	userAgent string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a Client with an 8 second timeout by default.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 8 * time.Second},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches url and decodes the body into v. Any status other than 200
// is an error.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, url)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, url, err)
	}
	return nil
}

// parseTime accepts RFC 3339 timestamps; anything else is the zero time so
// the resolver's defaults apply.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// endpoint returns overrides[i] when set, otherwise def.
func endpoint(overrides []string, i int, def string) string {
	if i < len(overrides) && overrides[i] != "" {
		return overrides[i]
	}
	return def
}
