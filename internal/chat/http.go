package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Option configures the HTTP-based providers.
type Option func(*httpOptions)

type httpOptions struct {
	client  *http.Client
	timeout *time.Duration
}

// WithHTTPClient sets a custom HTTP client. The client is used as is unless
// WithTimeout is also given.
func WithHTTPClient(c *http.Client) Option {
	return func(o *httpOptions) {
		o.client = c
	}
}

// WithTimeout sets the HTTP client timeout. A client from WithHTTPClient is
// copied rather than modified, so option order does not matter.
func WithTimeout(d time.Duration) Option {
	return func(o *httpOptions) {
		o.timeout = &d
	}
}

func buildHTTPClient(defaultTimeout time.Duration, opts []Option) *http.Client {
	o := &httpOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: defaultTimeout}
	}
	if o.timeout == nil || o.client.Timeout == *o.timeout {
		return o.client
	}
	c := *o.client
	c.Timeout = *o.timeout
	return &c
}

// postJSON sends payload as JSON and returns the raw response body of a 2xx response.
func postJSON(ctx context.Context, client *http.Client, op, url string, headers map[string]string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: response is not valid JSON", op)
	}
	return body, nil
}
