package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonasv2/sessionkit/core/logger"
	"github.com/jonasv2/sessionkit/core/tokenstore"
)

// DefaultBaseURL points at a local development API.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// TokenSource provides the current token pair. tokenstore.Store satisfies it.
type TokenSource interface {
	Load(ctx context.Context) (tokenstore.Pair, bool, error)
}

// Config holds client settings loaded from the environment.
type Config struct {
	BaseURL   string        `env:"SESSIONKIT_API_URL" envDefault:"http://localhost:8000/api/v1"`
	Timeout   time.Duration `env:"SESSIONKIT_API_TIMEOUT" envDefault:"30s"`
	UserAgent string        `env:"SESSIONKIT_USER_AGENT" envDefault:"sessionkit"`
}

// Client performs JSON requests against the auth API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	userAgent  string
	log        *slog.Logger
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root. A trailing slash is ignored.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the request logger. A nil logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics records request latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client reading tokens from tokens. tokens may be nil for
// unauthenticated use.
func New(tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		userAgent:  "sessionkit",
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from cfg. Options are applied after cfg.
func NewFromConfig(cfg Config, tokens TokenSource, opts ...Option) *Client {
	base := []Option{WithBaseURL(cfg.BaseURL), WithTimeout(cfg.Timeout)}
	if cfg.UserAgent != "" {
		base = append(base, WithUserAgent(cfg.UserAgent))
	}
	return New(tokens, append(base, opts...)...)
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get is Request with GET and no body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodGet, path, nil, out)
}

// Post is Request with POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPost, path, body, out)
}

// Put is Request with PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPut, path, body, out)
}

// Patch is Request with PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPatch, path, body, out)
}

// Delete is Request with DELETE and no body.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodDelete, path, nil, out)
}

// Request sends body (JSON-encoded when non-nil) to baseURL+path and decodes a
// 2xx response into out. out may be nil to discard the body.
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Join(ErrEncodeRequest, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Message: transportMessage, Status: StatusTransport, cause: err}
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		c.metrics.observe(method, StatusTransport, latency)
		c.log.DebugContext(ctx, "API request failed",
			logger.Method(method),
			logger.Path(path),
			logger.RequestID(requestID),
			logger.Latency(latency),
			logger.Error(err),
		)
		return &Error{Message: transportMessage, Status: StatusTransport, cause: err}
	}
	defer resp.Body.Close()

	c.metrics.observe(method, resp.StatusCode, latency)
	c.log.DebugContext(ctx, "API request",
		logger.Method(method),
		logger.Path(path),
		logger.StatusCode(resp.StatusCode),
		logger.RequestID(requestID),
		logger.Latency(latency),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newStatusError(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %s %s: %w", ErrDecodeResponse, method, path, err)
	}
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if token, ok := accessTokenFromContext(ctx); ok {
		return token, nil
	}
	if c.tokens == nil {
		return "", nil
	}
	pair, ok, err := c.tokens.Load(ctx)
	if err != nil {
		return "", errors.Join(ErrTokenUnavailable, err)
	}
	if !ok {
		return "", nil
	}
	return pair.AccessToken, nil
}
