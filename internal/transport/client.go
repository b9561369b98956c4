// Package transport provides the authenticated HTTP client used for all
// catalog API calls. Individual requests are bounded by the client timeout;
// there are no retries.
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/tillsync/tillsync/pkg/errors"
)

// DefaultHTTPTimeout bounds each catalog call.
const DefaultHTTPTimeout = 30 * time.Second

// Client provides HTTP client functionality with authentication.
type Client struct {
	http   *http.Client
	auth   Authenticator
	apiKey string
}

// New creates a new transport client with the specified authenticator and
// API key.
func New(auth Authenticator, apiKey string) *Client {
	return &Client{
		http:   &http.Client{Timeout: DefaultHTTPTimeout},
		auth:   auth,
		apiKey: apiKey,
	}
}

// WithTimeout returns the client with a different per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.http.Timeout = timeout
	return c
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapAPI(url, 0, err)
	}
	return c.Do(req)
}

// DecodeResponse decodes a JSON response into the target structure. Non-2xx
// responses become APIErrors carrying the response body.
func DecodeResponse(resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapAPI(resp.Request.URL.Path, resp.StatusCode, err)
	}

	if resp.StatusCode/100 != 2 {
		return &errors.APIError{
			Endpoint:   resp.Request.URL.Path,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", resp.Request.URL.Path, err)
	}

	return nil
}
