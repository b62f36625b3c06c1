package routeros

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	maxRetryAttempts = 3
)

// Config carries the connection settings for one router.
type Config struct {
	Host      string
	Username  string
	Password  string
	SSL       bool
	VerifyTLS bool
	Timeout   time.Duration
}

// BaseURL returns the REST API root for this router.
func (c Config) BaseURL() string {
	scheme := "http"
	if c.SSL {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimSuffix(c.Host, "/") + "/rest"
}

// Client talks to the RouterOS REST API. All list results come back as
// generic key-value rows which the snapshot fetchers map into typed
// records.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a client for one router configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.SSL {
		transport := &http.Transport{}
		if existing, ok := http.DefaultTransport.(*http.Transport); ok {
			transport = existing.Clone()
		}
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS} //nolint:gosec
		httpClient.Transport = transport
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// NewClientWithHTTPClient injects a custom HTTP client, used by tests.
func NewClientWithHTTPClient(cfg Config, httpClient *http.Client) *Client {
	c := NewClient(cfg)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// Host returns the configured router address.
func (c *Client) Host() string { return c.cfg.Host }

// RunCommand issues a GET against a print-style REST path and returns the
// raw rows. Transient failures are retried with linear backoff before a
// TransportError is returned.
func (c *Client) RunCommand(ctx context.Context, path string) ([]map[string]any, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// RunWrite issues a mutating POST (e.g. /ip/hotspot/active/remove) with a
// JSON body. Mutations are not retried.
func (c *Client) RunWrite(ctx context.Context, path string, body map[string]any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &APIError{Status: resp.StatusCode, Body: string(payload)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body map[string]any) ([]map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		rows, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, &TransportError{Endpoint: path, Err: ctx.Err()}
		case <-time.After(time.Duration(attempt) * 400 * time.Millisecond):
		}
	}
	if _, ok := lastErr.(*APIError); ok && !isRetryable(lastErr) {
		return nil, lastErr
	}
	return nil, &TransportError{Endpoint: path, Err: lastErr}
}

func (c *Client) doOnce(ctx context.Context, method, path string, body map[string]any) ([]map[string]any, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &APIError{Status: resp.StatusCode, Body: string(payload)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		// A print with no rows comes back as an empty array; an empty
		// body means the request never completed properly.
		return nil, fmt.Errorf("empty response")
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		// Single-object responses (e.g. /system/resource).
		var single map[string]any
		if err2 := json.Unmarshal(raw, &single); err2 == nil {
			return []map[string]any{single}, nil
		}
		return nil, err
	}
	return rows, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body map[string]any) (*http.Request, error) {
	endpoint := c.cfg.BaseURL() + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return t.String()
	default:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func boolFromWord(v any) bool {
	return strings.EqualFold(str(v), "true") || str(v) == "yes"
}

func uintFrom(v any) uint64 {
	raw := str(v)
	if raw == "" {
		return 0
	}
	var n uint64
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return 0
	}
	return n
}
