package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenFunc supplies the current access token. It returns an empty string
// when no session is active, in which case requests fall back to the
// public API key.
type TokenFunc func() string

// Client is a thin HTTP client for the hosted service's REST interface
// (PostgREST row access under /rest/v1, auth under /auth/v1). It handles
// API-key and Bearer authentication, JSON marshaling, per-request
// timeouts, and automatic retry with backoff on HTTP 429.
type Client struct {
	baseURL    string
	anonKey    string
	token      TokenFunc
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a new service client. baseURL is the root URL of the
// hosted instance; anonKey is the public API key. The timeout bounds every
// request so a stuck call cannot wedge the caller's loading state.
func NewClient(baseURL, anonKey string, token TokenFunc, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: 3,
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, result)
}

// Post performs an HTTP POST request with a JSON body. The prefer string,
// if non-empty, is sent as the Prefer header (PostgREST upsert and
// representation controls).
func (c *Client) Post(
	ctx context.Context,
	path string,
	query url.Values,
	prefer string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, query, prefer, body, result)
}

// Patch performs an HTTP PATCH request with a JSON body.
func (c *Client) Patch(
	ctx context.Context,
	path string,
	query url.Values,
	prefer string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPatch, path, query, prefer, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(
	ctx context.Context,
	path string,
	query url.Values,
	prefer string,
	result interface{},
) error {
	return c.do(ctx, http.MethodDelete, path, query, prefer, nil, result)
}

// do is the core HTTP method that builds the request, handles auth
// headers, 429 backoff, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	prefer string,
	body interface{},
	result interface{},
) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &StoreError{Op: op, Err: fmt.Errorf("marshaling request body: %w", err)}
		}
		bodyReader = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on retries since it was consumed.
		if attempt > 0 && body != nil {
			data, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if err != nil {
			return &StoreError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
		}

		bearer := c.token()
		if bearer == "" {
			bearer = c.anonKey
		}
		req.Header.Set("apikey", c.anonKey)
		req.Header.Set("Authorization", "Bearer "+bearer)
		req.Header.Set("Accept", "application/json")
		if prefer != "" {
			req.Header.Set("Prefer", prefer)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &StoreError{Op: op, Err: err}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return &StoreError{Op: op, Err: fmt.Errorf("reading response body: %w", readErr)}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = &StoreError{
				Op:     op,
				Status: resp.StatusCode,
				Err:    fmt.Errorf("rate limited"),
			}

			select {
			case <-ctx.Done():
				return &StoreError{Op: op, Err: ctx.Err()}
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthenticated, op)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StoreError{
				Op:     op,
				Status: resp.StatusCode,
				Err:    fmt.Errorf("%s", serviceErrorMessage(respBody)),
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return &StoreError{
				Op:  op,
				Err: fmt.Errorf("unmarshaling response: %w", err),
			}
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// serviceErrorMessage extracts a human-readable message from an error
// response body. PostgREST replies with {message, ...}; the auth endpoint
// replies with {error_description} or {msg}.
func serviceErrorMessage(body []byte) string {
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.ErrorDescription != "":
			return payload.ErrorDescription
		case payload.Msg != "":
			return payload.Msg
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "empty error response"
	}
	return msg
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
