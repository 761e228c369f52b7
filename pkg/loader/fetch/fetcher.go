// Package fetch wraps the HTTP transport behind the single-shot fetch
// contract the interceptor consumes: one GET per call, caller headers
// forwarded verbatim, no retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bactn/vidloader/pkg/loader/common"
)

// Config contains HTTP client settings
type Config struct {
	Timeout   time.Duration `json:"timeout"`
	UserAgent string        `json:"user_agent"`
}

// DefaultConfig returns default fetcher configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		UserAgent: "vidloader/1.0",
	}
}

// Client issues single manifest fetches over HTTP
type Client struct {
	client *http.Client
	config *Config
}

// NewClient creates a fetcher with the given configuration
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	return &Client{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
	}
}

// NewClientWithHTTPClient creates a fetcher around an existing HTTP
// client, used by tests and hosts that manage their own transport.
func NewClientWithHTTPClient(client *http.Client, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{client: client, config: config}
}

// Fetch performs one GET of u with the supplied headers. A transport
// error is returned wrapped; a response without recognizable metadata or
// without a body surfaces as ErrMalformedResponse.
func (c *Client) Fetch(ctx context.Context, u *url.URL, headers common.Headers) (*common.FetchedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/vnd.apple.mpegurl,application/x-mpegurl,text/plain")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("%w: status %d with empty body",
			common.ErrMalformedResponse, resp.StatusCode)
	}

	return &common.FetchedResponse{
		Meta: common.ResponseMeta{
			StatusCode:    resp.StatusCode,
			ContentType:   resp.Header.Get("Content-Type"),
			ContentLength: int64(len(body)),
		},
		Body: body,
	}, nil
}

var _ common.Fetcher = (*Client)(nil)
