// Package httpclient is the small HTTP layer used to talk to the Postman API.
// It issues authenticated requests, logs every failure and reports failures
// as typed *Error values instead of panicking or returning partial data.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/blackcoderx/brunomigrate/pkg/logging"
	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// Client performs HTTP requests with a shared set of default headers and an
// optional bearer token.
type Client struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
	headers    http.Header
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBearerToken authenticates every request with "Authorization: Bearer <token>".
func WithBearerToken(token string) Option {
	return func(c *Client) {
		if token == "" {
			c.tokens = nil
			return
		}
		c.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	}
}

// WithTimeout bounds each request. Zero keeps the transport defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHeader adds a default header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithLogger sets the logger used for request and failure lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.OrDiscard(l) }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a Client. JSON is the default content type.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		headers:    http.Header{},
		logger:     logging.Discard(),
	}
	c.headers.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption adjusts a single outgoing request.
type RequestOption func(*http.Request)

// Header sets a header on one request, overriding the client defaults.
func Header(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// BasicAuth sends username/password credentials on one request. It takes
// precedence over the client's bearer token.
func BasicAuth(username, password string) RequestOption {
	return func(r *http.Request) { r.SetBasicAuth(username, password) }
}

// Response is a fully read HTTP response with a 2xx status.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil, opts...)
}

// PostJSON performs a POST request with payload encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, opts ...RequestOption) (*Response, error) {
	body, err := encodeJSON(payload)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, http.MethodPost, url, body, opts...)
}

// Post performs a POST request with a pre-encoded string payload.
func (c *Client) Post(ctx context.Context, url, payload string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, strings.NewReader(payload), opts...)
}

// PutJSON performs a PUT request with payload encoded as JSON.
func (c *Client) PutJSON(ctx context.Context, url string, payload any, opts ...RequestOption) (*Response, error) {
	body, err := encodeJSON(payload)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, http.MethodPut, url, body, opts...)
}

// Put performs a PUT request with a pre-encoded string payload.
func (c *Client) Put(ctx context.Context, url, payload string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, url, strings.NewReader(payload), opts...)
}

// Do sends one request. Any transport failure or non-2xx status is logged
// and returned as *Error; no retry is attempted.
func (c *Client) Do(ctx context.Context, method, url string, body io.Reader, opts ...RequestOption) (*Response, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, c.fail(&Error{Kind: KindTransport, Method: method, URL: url, Err: fmt.Errorf("creating request: %w", err)})
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for _, opt := range opts {
		opt(req)
	}
	if c.tokens != nil && req.Header.Get("Authorization") == "" {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, c.fail(&Error{Kind: KindUnauthorized, Method: method, URL: url, Err: err})
		}
		tok.SetAuthHeader(req)
	}

	c.logger.Debug("http request", "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(&Error{Kind: KindTransport, Method: method, URL: url, Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&Error{Kind: KindTransport, Method: method, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(&Error{
			Kind:       kindForStatus(resp.StatusCode),
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), 200),
		})
	}

	r := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
		Duration:   time.Since(start),
	}
	c.logger.Debug("http response", "method", method, "url", url, "status", resp.StatusCode, "duration_ms", r.Duration.Milliseconds())
	return r, nil
}

func (c *Client) fail(e *Error) error {
	c.logger.Error("http request failed",
		"method", e.Method,
		"url", e.URL,
		"kind", string(e.Kind),
		"status", e.StatusCode,
		"error", e.Error(),
	)
	return e
}

func encodeJSON(payload any) (io.Reader, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling body: %w", err)
	}
	return bytes.NewReader(data), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
