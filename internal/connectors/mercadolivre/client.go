package mercadolivre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.MarketplaceGateway = (*Client)(nil)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.mercadolibre.com"

	// DefaultSiteID is the Brazilian site.
	DefaultSiteID = "MLB"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries. It doubles per retry.
	RetryDelay = 300 * time.Millisecond

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 10 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	SiteID            string
	Timeout           time.Duration
	RequestsPerSecond float64
	// MaxRetries overrides the number of retries. Negative disables retries.
	MaxRetries int
	// RetryDelay overrides the base backoff.
	RetryDelay time.Duration
	// HTTPClient replaces the default client. Its timeout is left untouched.
	HTTPClient *http.Client
}

// Client talks to the marketplace API.
type Client struct {
	baseURL     string
	siteID      string
	http        *http.Client
	rateLimiter *RateLimiter
	maxRetries  int
	retryDelay  time.Duration
	logger      *zap.Logger
}

// NewClient creates a client. Zero config fields take the package defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SiteID == "" {
		cfg.SiteID = DefaultSiteID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = MaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = RetryDelay
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		siteID:      cfg.SiteID,
		http:        httpClient,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		logger:      logger.Named("mercadolivre"),
	}
}

// SiteID returns the marketplace site the client targets.
func (c *Client) SiteID() string {
	return c.siteID
}

// Get sends a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, endpoint, callContext string, token domain.AccessToken, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, callContext, token, nil, out)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint, callContext string, token domain.AccessToken, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, callContext, token, body, out)
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint, callContext string, token domain.AccessToken, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, callContext, token, body, out)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint, callContext string, token domain.AccessToken, out any) error {
	return c.doJSON(ctx, http.MethodDelete, endpoint, callContext, token, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, callContext string, token domain.AccessToken, body, out any) error {
	var payload []byte
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return newUnexpectedError(callContext, 0, fmt.Errorf("encode body: %w", err), nil)
		}
		payload = b
		contentType = "application/json"
	}

	status, respBody, err := c.do(ctx, method, endpoint, callContext, token, contentType, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return newUnexpectedError(callContext, status, fmt.Errorf("decode response: %w", err), respBody)
	}
	return nil
}

// do sends the request, retrying transient failures. It returns the status
// and body of a 2xx response, or a *domain.RemoteError.
func (c *Client) do(
	ctx context.Context,
	method, endpoint, callContext string,
	token domain.AccessToken,
	contentType string,
	payload []byte,
) (int, []byte, error) {
	url := c.baseURL + endpoint

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return 0, nil, newNetworkError(callContext, fmt.Errorf("rate limit wait: %w", err))
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return 0, nil, newUnexpectedError(callContext, 0, fmt.Errorf("build request: %w", err), nil)
		}
		if token.Value != "" {
			req.Header.Set("Authorization", "Bearer "+token.Value)
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() == nil && attempt < c.maxRetries {
				c.logger.Debug("retrying after connection error",
					zap.String("context", callContext),
					zap.Int("attempt", attempt+1),
					zap.Error(err))
				if werr := c.backoff(ctx, attempt); werr != nil {
					return 0, nil, newNetworkError(callContext, werr)
				}
				continue
			}
			return 0, nil, newNetworkError(callContext, err)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		_ = resp.Body.Close()
		c.rateLimiter.Observe(resp)

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			c.logger.Debug("retrying after server error",
				zap.String("context", callContext),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1))
			if werr := c.backoff(ctx, attempt); werr != nil {
				return 0, nil, newNetworkError(callContext, werr)
			}
			continue
		}
		if readErr != nil {
			return resp.StatusCode, nil, newNetworkError(callContext, fmt.Errorf("read body: %w", readErr))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.StatusCode, body, newHTTPError(callContext, resp.StatusCode, body)
		}

		c.logger.Debug("request done",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return resp.StatusCode, body, nil
	}
}

// backoff sleeps retryDelay * 2^attempt.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.retryDelay << attempt)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
