// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTimeout is returned when the context expires before a response arrives.
var ErrTimeout = errors.New("REQUEST_TIMEOUT")

// StatusError is returned by DoJSON for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Client is a JSON HTTP client with bounded retries on transport errors and
// 5xx responses.
type Client struct {
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseBackoff: 100 * time.Millisecond,
	}
}

// WithRetries sets how many times a failed attempt is repeated.
func (c *Client) WithRetries(n int) *Client {
	if n < 0 {
		n = 0
	}
	c.maxRetries = n
	return c
}

// WithTransport replaces the round tripper, e.g. with an oauth2.Transport.
func (c *Client) WithTransport(rt http.RoundTripper) *Client {
	c.httpClient.Transport = rt
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req.WithContext(ctx))
}

// DoJSON encodes in as the request body (when non-nil), sends it and decodes
// a 2xx response into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, url string, headers map[string]string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrTimeout
			}
		}

		body, status, err := c.send(ctx, method, url, headers, payload)
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		if err != nil {
			lastErr = err
			continue
		}

		if status >= 500 {
			lastErr = &StatusError{StatusCode: status, Body: truncate(string(body), 512)}
			continue
		}
		if status < 200 || status > 299 {
			return &StatusError{StatusCode: status, Body: truncate(string(body), 512)}
		}

		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

func (c *Client) send(ctx context.Context, method, url string, headers map[string]string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
