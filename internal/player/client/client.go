// Package client provides the HTTP client players use to talk to the provider
package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

// defaultTimeout bounds every screen fetch so a stalled link degrades to the
// offline path instead of hanging the refresh driver
const defaultTimeout = 30 * time.Second

// Client fetches screen state from the provider
type Client struct {
	// baseURL is the provider origin for all requests
	baseURL string
	// httpClient is the underlying HTTP client
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the default request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTLSConfig sets custom TLS configuration
func WithTLSConfig(config *tls.Config) Option {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: config,
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client, for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a provider client rooted at baseURL
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL: unsupported scheme %q", u.Scheme)
	}
	// Providers may be mounted under a path prefix; keep it, drop the rest
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL: u.String(),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the provider origin, used to normalize relative asset refs
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchScreen retrieves a terminal's full screen state. The returned instant
// is the local receipt time, taken as close to the response as possible so
// the clock offset computed from server_time stays honest.
func (c *Client) FetchScreen(ctx context.Context, terminalID string) (*v1alpha1.ScreenResponse, time.Time, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(u.Path, "api", "pantalla", terminalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	receivedAt := time.Now()
	if err != nil {
		return nil, receivedAt, fmt.Errorf("error fetching screen: %w", err)
	}
	defer resp.Body.Close()

	if err := handleResponse(resp); err != nil {
		return nil, receivedAt, err
	}

	var screen v1alpha1.ScreenResponse
	if err := json.NewDecoder(resp.Body).Decode(&screen); err != nil {
		return nil, receivedAt, fmt.Errorf("error decoding response: %w", err)
	}

	return &screen, receivedAt, nil
}
