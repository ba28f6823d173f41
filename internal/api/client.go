// Package api talks to the photobooth server. Every call goes through
// Client.Do, which bounds the wait, attaches headers and normalizes the
// response body into an Envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shhac/mipo/internal/logging"
)

const (
	// DefaultTimeout bounds ordinary calls.
	DefaultTimeout = 30 * time.Second
	// StripTimeout bounds strip generation, which composites on the server.
	StripTimeout = 120 * time.Second
)

var emptyObject = json.RawMessage(`{}`)

// Request describes one call to the server.
type Request struct {
	Method  string // defaults to GET
	Path    string // relative to the base URL, or absolute
	Body    any    // JSON-encoded when non-nil
	Headers map[string]string
	Token   string        // sent as a bearer credential when non-empty
	Timeout time.Duration // defaults to the client timeout
}

// Envelope is a normalized response: the parsed body and the status code.
// Data is `{}` when the body was empty, or when it was not JSON but the
// status indicated success (Malformed is then set).
type Envelope struct {
	Data      json.RawMessage
	Status    int
	Malformed bool
}

// OK reports whether the status is in the 2xx range.
func (e *Envelope) OK() bool { return e.Status >= 200 && e.Status < 300 }

// Decode unmarshals Data into v.
func (e *Envelope) Decode(v any) error { return json.Unmarshal(e.Data, v) }

// ErrorMessage returns the body's "error" text, or fallback when the body
// has none.
func (e *Envelope) ErrorMessage(fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fallback
}

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	doer         Doer
	logger       *slog.Logger
	timeout      time.Duration
	stripTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeouts overrides the default and strip timeouts. Zero keeps the
// current value.
func WithTimeouts(def, strip time.Duration) Option {
	return func(c *Client) {
		if def > 0 {
			c.timeout = def
		}
		if strip > 0 {
			c.stripTimeout = strip
		}
	}
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		doer:         &http.Client{},
		logger:       logging.NewNopLogger(),
		timeout:      DefaultTimeout,
		stripTimeout: StripTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// ResolveURL joins path onto the base URL with exactly one slash. Paths
// that already carry an http(s) scheme are returned unchanged.
func (c *Client) ResolveURL(path string) string {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

// Do performs r and normalizes the response. Transport failures and
// unparseable failure bodies come back as *RequestError; any response that
// was received and parsed is returned as an Envelope whatever its status.
func (c *Client) Do(ctx context.Context, r Request) (*Envelope, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.ResolveURL(r.Path)

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("X-Request-ID", uuid.NewString())
	for k, v := range r.Headers {
		header.Set(k, v)
	}
	if r.Token != "" {
		header.Set("Authorization", "Bearer "+r.Token)
	}

	var body []byte
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &RequestError{
				Kind:    KindTransport,
				Message: fmt.Sprintf("invalid request body: %v", err),
				Cause:   err,
			}
		}
		body = b
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	log := c.logger.With(
		slog.String("method", method),
		slog.String("url", target),
		slog.String("request_id", header.Get("X-Request-ID")),
	)
	log.Debug("sending request",
		slog.Duration("timeout", timeout),
		slog.Bool("authenticated", r.Token != ""),
		slog.String("body", logging.TruncateForLog(string(body))),
	)

	start := time.Now()
	resp, err := c.send(ctx, method, target, header, body, timeout)
	if err != nil {
		reqErr := classifyTransportError(err)
		log.Warn("request failed",
			slog.String("kind", reqErr.Kind.String()),
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("error", err),
		)
		return nil, reqErr
	}

	log.Debug("received response",
		slog.Int("status", resp.status),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("body", logging.TruncateForLog(string(resp.body))),
	)

	env := &Envelope{Status: resp.status}
	text := bytes.TrimSpace(resp.body)
	switch {
	case len(text) == 0:
		env.Data = emptyObject
	case json.Valid(text):
		env.Data = json.RawMessage(text)
	case resp.ok():
		env.Data = emptyObject
		env.Malformed = true
	default:
		msg := string(resp.body)
		if strings.TrimSpace(msg) == "" {
			msg = resp.statusText
		}
		if msg == "" {
			msg = "Request failed"
		}
		return nil, &RequestError{Kind: KindMalformed, Message: msg, Status: resp.status}
	}
	return env, nil
}

// call performs r and decodes the body into out when the status is one of
// accept. Any other status becomes a KindServer error carrying the server's
// "error" text, or fallback.
func (c *Client) call(ctx context.Context, r Request, out any, fallback string, accept ...int) error {
	env, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	if !slices.Contains(accept, env.Status) {
		return &RequestError{
			Kind:    KindServer,
			Message: env.ErrorMessage(fallback),
			Status:  env.Status,
		}
	}
	if out == nil {
		return nil
	}
	if err := env.Decode(out); err != nil {
		return &RequestError{Kind: KindMalformed, Message: fallback, Status: env.Status, Cause: err}
	}
	return nil
}
