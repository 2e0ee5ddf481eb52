package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Middleware manipulates an outgoing *http.Request before it is executed.
// The context is provided for cancellation and to support middleware that
// blocks, such as request pacing.
type Middleware func(context.Context, *http.Request) error

// ClientOption configures the Client.
type ClientOption func(*Client)

// Client fetches documents from STAC APIs. It is not bound to a single
// endpoint: every call receives the endpoint URL it should address, and URLs
// are built by plain concatenation so the endpoint is used exactly as given.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	middleware []Middleware
	logger     *zap.Logger
}

// -----------------------------------------------------------------------------
// Client options
// -----------------------------------------------------------------------------

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP timeout. A zero duration keeps the timeout of the
// HTTP client, which is none for the default one. The timeout is set on a copy
// of the HTTP client, whatever the option order.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithMiddleware registers one or more request-middleware functions.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) { c.middleware = append(c.middleware, mw...) }
}

// WithRequestInterval spaces outgoing requests at least d apart. A
// non-positive d disables pacing.
func WithRequestInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		c.middleware = append(c.middleware, RateLimit(rate.NewLimiter(rate.Every(d), 1)))
	}
}

// WithLogger sets the logger used for request lifecycle events.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new STAC client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// -----------------------------------------------------------------------------
// getJSON / doRequest: one place to build a request, run middleware, execute
// it and classify the failure.
// -----------------------------------------------------------------------------

// getJSON fetches rawURL and returns the body when the status is 200 and the
// body is syntactically valid JSON.
func (c *Client) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	if !json.Valid(body) {
		return nil, &DecodeError{URL: rawURL, Err: fmt.Errorf("response body is not valid JSON")}
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	// Apply all registered middleware in order.
	for _, mw := range c.middleware {
		if err := mw(ctx, req); err != nil {
			return nil, fmt.Errorf("error applying middleware for %s: %w", rawURL, err)
		}
	}

	c.logger.Debug("stac request", zap.String("method", method), zap.String("url", rawURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("stac request failed", zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}
	return resp, nil
}
