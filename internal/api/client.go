// Package api wraps the crew HTTP API: agents, teams, tasks, and per-task
// chat messages.
package api

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

	"github.com/google/uuid"
)

// DefaultTimeout bounds every request issued by the client.
const DefaultTimeout = 30 * time.Second

// HeaderInjector mutates an outgoing request, typically to attach
// credentials. The client treats it as opaque.
type HeaderInjector func(*http.Request)

// BearerToken returns a HeaderInjector that sets an Authorization header.
// An empty token injects nothing, which surfaces as ErrUnauthorized on
// servers that enforce auth.
func BearerToken(token string) HeaderInjector {
	return func(req *http.Request) {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// Client is an HTTP client for the crew API.
type Client struct {
	baseURL    string
	inject     HeaderInjector
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHeaderInjector installs the credential injector.
func WithHeaderInjector(inject HeaderInjector) Option {
	return func(c *Client) { c.inject = inject }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying http.Client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a crew API client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do issues a request and decodes a JSON response into out (skipped when
// out is nil). Non-2xx statuses map onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("crew api: bad path %q: %w", path, err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("crew api: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("crew api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.inject != nil {
		c.inject(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crew api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("crew api: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("crew api: decode response: %w", err)
	}
	return nil
}

// ListMessages fetches the full message history for a task. Order is not
// guaranteed; callers re-sort.
func (c *Client) ListMessages(ctx context.Context, taskID string) ([]Message, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: empty task id", ErrNotFound)
	}
	var page MessagePage
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID)+"/messages", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// PostMessage submits a user message to a task. The response body, if any,
// is ignored; the next listing is authoritative.
func (c *Client) PostMessage(ctx context.Context, taskID, content string) error {
	if taskID == "" {
		return fmt.Errorf("%w: empty task id", ErrNotFound)
	}
	payload := map[string]string{"content": content}
	return c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/messages", payload, nil)
}
