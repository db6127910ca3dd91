// Package apiclient is the Auth API Client: a JSON client for the TasteTrail
// backend that decorates every request with the current bearer token and
// reports failures in the domain error taxonomy.
//
// The client only reads the token; it never logs the user out itself. That
// decision belongs to the navigator, which sees ErrCredentialExpired.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// TokenSource yields the current credential token, or "" when there is none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Config captures how to reach the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	tokens  TokenSource
	http    *http.Client
}

// New builds a Client. tokens may be nil for a public-only client.
func New(cfg Config, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL: base,
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends a JSON request to path and decodes a 2xx JSON response into out
// (which may be nil). Non-2xx responses come back as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, body, out, true)
}

// send is Do with control over the bearer header. Credential exchanges go
// out without it, so a rejection there is always an authentication failure.
func (c *Client) send(ctx context.Context, method, path string, body, out any, authenticated bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	target := c.baseURL.JoinPath(ref.Path)
	target.RawQuery = ref.RawQuery

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Read the token once per request so the header and the error
	// classification agree even if the session changes mid-flight.
	withToken := authenticated && setBearer(req, c.tokens)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, ref.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp, withToken)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Transport injects the bearer header on every request when a token is
// available, for decorating an *http.Client that does not go through Do.
type Transport struct {
	Base   http.RoundTripper
	Tokens TokenSource
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	if !setBearer(r, t.Tokens) {
		return base.RoundTrip(req)
	}
	return base.RoundTrip(r)
}

// setBearer attaches the current token, reporting whether one was present.
func setBearer(req *http.Request, tokens TokenSource) bool {
	if tokens == nil {
		return false
	}
	token := tokens.Token()
	if token == "" {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return true
}
