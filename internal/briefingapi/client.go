// Package briefingapi talks to the remote Briefing Service: it submits
// drafts for generation and lists previously generated briefings.
package briefingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kingrea/briefing-studio/internal/briefing"
)

const (
	// BriefingsPath is the collection resource on the service.
	BriefingsPath = "/api/briefings"
	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes int64 = 8 << 20
)

// ErrInvalidResponse is returned when a 2xx response does not carry JSON.
var ErrInvalidResponse = errors.New("briefingapi: response is not valid JSON")

// StatusError reports a non-2xx answer from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("briefingapi: unexpected status %d", e.Code)
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("briefingapi: unexpected status %d: %s", e.Code, body)
}

// TokenSource supplies the bearer token sent with every request.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token calls f.
func (f TokenFunc) Token() string {
	if f == nil {
		return ""
	}
	return f()
}

// Logger is the minimal logging surface the client writes to.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Client is an HTTP client for the Briefing Service.
type Client struct {
	endpoint string
	tokens   TokenSource
	http     *http.Client
	logger   Logger
	timeout  time.Duration
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds each request. Zero disables the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// New returns a client for the service rooted at endpoint.
func New(endpoint string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = TokenFunc(nil)
	}
	c := &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		tokens:   tokens,
		http:     http.DefaultClient,
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// CreateBriefing submits a draft and returns the generation result body as
// received.
func (c *Client) CreateBriefing(ctx context.Context, draft briefing.Draft) (json.RawMessage, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("briefingapi: encode draft: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, payload)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		c.logger.Printf("briefingapi: create returned %d bytes of non-JSON", len(body))
		return nil, ErrInvalidResponse
	}
	c.logger.Printf("briefingapi: briefing generated for %q (%d bytes)", draft.CompanyName, len(body))
	return json.RawMessage(body), nil
}

// ListBriefings fetches the briefings stored by the service. A body that is
// not a JSON array yields an empty list.
func (c *Client) ListBriefings(ctx context.Context) ([]briefing.Summary, error) {
	body, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	summaries, ok := briefing.ParseSummaries(body)
	if !ok {
		c.logger.Printf("briefingapi: listing is not an array, treating as empty")
	}
	return summaries, nil
}

func (c *Client) do(ctx context.Context, method string, payload []byte) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	url := c.endpoint + BriefingsPath
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("briefingapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("briefingapi: %s %s failed: %v", method, url, err)
		return nil, fmt.Errorf("briefingapi: %s %s: %w", method, BriefingsPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("briefingapi: read response: %w", err)
	}
	c.logger.Printf("briefingapi: %s %s -> %d in %s", method, url, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
