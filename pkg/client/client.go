// Package client talks to the SimpliParts REST API and implements the shell's
// collaborator interfaces, so a shell can run outside the server process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"simpliparts-be/internal/shell"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response decoded from the standard envelope.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	session   *shell.Session
	listeners map[int]func(*shell.Session)
	nextID    int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSession restores a previously stored session.
func WithSession(s *shell.Session) Option {
	return func(c *Client) { c.session = s }
}

// New builds a client for baseURL, e.g. "http://localhost:3000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		listeners: make(map[int]func(*shell.Session)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends body as JSON and decodes the envelope's data into out. On a non-2xx
// status it still decodes data into out, then returns an *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil && ok {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	if ok {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	if resp.StatusCode == http.StatusBadRequest && len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &apiErr.Fields)
	}
	return apiErr
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

// setSession stores s and notifies listeners outside the lock.
func (c *Client) setSession(s *shell.Session) {
	c.mu.Lock()
	c.session = s
	fns := make([]func(*shell.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		if s == nil {
			fn(nil)
			continue
		}
		cp := *s
		fn(&cp)
	}
}
