// Package api is the JSON/HTTP client of the storefront backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://127.0.0.1:5000"

	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 1 << 20 // 1MB
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool, err error)
}

type RequestOptions struct {
	Method  string
	Body    any
	Auth    bool
	Headers http.Header
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger

	timeout        time.Duration
	circuitBreaker bool
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout bounds every request, including reading the response body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithCircuitBreaker makes the client fail fast after repeated backend
// failures instead of sending every request.
func WithCircuitBreaker() Option {
	return func(c *Client) {
		c.circuitBreaker = true
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme[%s] is not http(s)", u.Scheme)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  zap.NewNop(),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		var transport http.RoundTripper = otelhttp.NewTransport(http.DefaultTransport)
		if c.circuitBreaker {
			transport = newBreakerTransport(transport, c.logger)
		}
		c.httpClient = &http.Client{
			Transport: transport,
			Timeout:   c.timeout,
		}
	} else if c.circuitBreaker {
		next := c.httpClient.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		wrapped := *c.httpClient
		wrapped.Transport = newBreakerTransport(next, c.logger)
		c.httpClient = &wrapped
	}

	return c, nil
}

// Request sends a JSON request to baseURL+endpoint and decodes a successful
// JSON answer into out (nil discards it). Every failure is an *Error.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	err := c.request(ctx, endpoint, opts, out)
	if err != nil {
		c.logger.Error("api request failed",
			zap.String("method", methodOrGet(opts.Method)),
			zap.String("endpoint", endpoint),
			zap.Int("status", StatusCode(err)),
			zap.Error(err))
	}
	return err
}

func (c *Client) request(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return &Error{Kind: KindDecode, Message: fmt.Sprintf("encode request body: %v", err), Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, methodOrGet(opts.Method), c.baseURL+endpoint, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("build request: %v", err), Err: err}
	}

	req.Header = c.headers(ctx, opts)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("request %s: %v", endpoint, err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err), Err: err}
		}
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: fmt.Sprintf("invalid JSON response: %v", err), Err: err}
	}

	return nil
}

// headers merges the JSON defaults, the bearer token and the caller's
// headers; the caller wins on conflicts.
func (c *Client) headers(ctx context.Context, opts RequestOptions) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")

	if opts.Auth && c.tokens != nil {
		token, ok, err := c.tokens.Token(ctx)
		switch {
		case err != nil:
			c.logger.Warn("token unavailable, sending request without it", zap.Error(err))
		case ok:
			h.Set("Authorization", "Bearer "+token)
		}
	}

	for key, values := range opts.Headers {
		h[http.CanonicalHeaderKey(key)] = values
	}

	return h
}

func statusError(resp *http.Response) *Error {
	message := statusMessage(resp.StatusCode)

	var payload struct {
		Erro string `json:"erro"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil && json.Unmarshal(data, &payload) == nil && payload.Erro != "" {
		message = payload.Erro
	}

	return &Error{Kind: KindHTTPStatus, Status: resp.StatusCode, Message: message}
}

func methodOrGet(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return method
}
