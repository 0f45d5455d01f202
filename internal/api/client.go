package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConfigProvider resolves the connection settings for each request. Both the
// base URL and the token can change between requests without a restart, so
// they are read fresh on every call rather than captured at construction.
type ConfigProvider interface {
	BaseURL() string
	Token() string
}

// Client calls the training-center backend. Responses use the
// {status, data, message} envelope convention; Do unwraps the envelope and
// decodes data directly into out.
type Client struct {
	provider ConfigProvider
	http     *http.Client
}

// New creates a client. The 10 second timeout is the request budget for every
// call; exceeding it surfaces as a NetworkError.
func New(provider ConfigProvider) *Client {
	return &Client{
		provider: provider,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type envelope struct {
	Status  *bool           `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Do issues one request and decodes the unwrapped payload into out (out may
// be nil when the caller only cares about success).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := strings.TrimRight(c.provider.BaseURL(), "/") + path

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.provider.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Printf("api: %s %s", method, url)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeRequest(method, outcomeNetwork, time.Since(start))
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observeRequest(method, outcomeNetwork, time.Since(start))
		return &NetworkError{Err: err}
	}

	var env envelope
	envErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		observeRequest(method, outcomeAuth, time.Since(start))
		return &AuthError{Message: env.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observeRequest(method, outcomeHTTP, time.Since(start))
		return &HTTPError{Status: resp.StatusCode, Message: env.Message}
	}
	if envErr == nil && env.Status != nil && !*env.Status {
		observeRequest(method, outcomeHTTP, time.Since(start))
		return &HTTPError{Status: resp.StatusCode, Message: env.Message}
	}
	observeRequest(method, outcomeOK, time.Since(start))

	if out == nil {
		return nil
	}

	// Some endpoints answer with a bare payload instead of the envelope.
	payload := raw
	if envErr == nil && env.Data != nil {
		payload = env.Data
	}
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &HTTPError{Status: resp.StatusCode, Message: "unreadable server response"}
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}
