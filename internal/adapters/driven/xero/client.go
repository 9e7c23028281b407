// Package xero implements the entity source ports against the Xero
// accounting API.
package xero

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/logger"
)

const (
	// DefaultBaseURL is the accounting API root.
	DefaultBaseURL = "https://api.xero.com/api.xro/2.0"

	// DefaultConnectionsURL lists the tenants a token can access.
	DefaultConnectionsURL = "https://api.xero.com/connections"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// HeaderTenantID selects the tenant of an accounting request.
	HeaderTenantID = "Xero-Tenant-Id"

	// HeaderIfModifiedSince restricts results to recently modified entities.
	HeaderIfModifiedSince = "If-Modified-Since"
)

// Config holds client settings. Zero values select the defaults; a
// negative RequestsPerMinute disables proactive throttling.
type Config struct {
	BaseURL           string
	ConnectionsURL    string
	RequestsPerMinute int
	Timeout           time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ConnectionsURL == "" {
		c.ConnectionsURL = DefaultConnectionsURL
	}
	if c.RequestsPerMinute == 0 {
		c.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client performs authenticated, throttled GET requests.
type Client struct {
	config        Config
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter

	mu         sync.Mutex
	httpClient *http.Client
}

// NewClient creates a client that authenticates through tokenProvider.
func NewClient(tokenProvider driven.TokenProvider, config Config) *Client {
	config = config.withDefaults()
	return &Client{
		config:        config,
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(config.RequestsPerMinute),
	}
}

// NewClientWithHTTPClient creates a client using an already authenticated
// HTTP client. Useful for testing.
func NewClientWithHTTPClient(httpClient *http.Client, config Config) *Client {
	c := NewClient(nil, config)
	c.httpClient = httpClient
	return c
}

// ensureClient builds the OAuth2 HTTP client on first use.
func (c *Client) ensureClient(ctx context.Context) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient != nil {
		return c.httpClient, nil
	}
	if c.tokenProvider == nil {
		return nil, fmt.Errorf("xero: no token provider configured")
	}

	// Token refreshes must outlive the request that triggered them.
	base := context.WithoutCancel(ctx)
	ts, err := c.tokenProvider.TokenSource(base)
	if err != nil {
		return nil, fmt.Errorf("get token source: %w", err)
	}
	hc := oauth2.NewClient(base, ts)
	hc.Timeout = c.config.Timeout
	c.httpClient = hc
	return hc, nil
}

// get fetches rawURL and returns the body of a 2xx response. A 304 yields
// a nil body. A 429 yields *domain.RateLimitError; other failures *APIError.
func (c *Client) get(ctx context.Context, tenantID, rawURL string, query url.Values, header http.Header) ([]byte, error) {
	hc, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Bucket().Wait(ctx); err != nil {
		return nil, err
	}

	u := rawURL
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if tenantID != "" {
		req.Header.Set(HeaderTenantID, tenantID)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	logger.Debug("GET %s", u)
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Debug("Rate limited on %s (%s)", u, resp.Header.Get(HeaderLimitProblem))
		return nil, err
	}
	c.reportQuota(tenantID)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.Status),
			URL:        u,
		}
	}
	return body, nil
}

// reportQuota logs the remaining allowance Xero reported for the request.
func (c *Client) reportQuota(tenantID string) {
	if tenantID == "" {
		return
	}
	minute, day := c.rateLimiter.Remaining()
	logger.Debug("Xero quota for %s: %d this minute, %d today", tenantID, minute, day)
	if day, low := c.rateLimiter.LowDailyQuota(tenantID); low {
		logger.Warn("Only %d Xero API calls left today for tenant %s", day, tenantID)
	}
}

// errorMessage extracts Xero's error text, falling back to the status.
func errorMessage(body []byte, status string) string {
	if gjson.ValidBytes(body) {
		for _, field := range []string{"Detail", "Message", "Title"} {
			if msg := gjson.GetBytes(body, field).String(); msg != "" {
				return msg
			}
		}
	}
	return status
}
