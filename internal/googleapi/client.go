// Package googleapi is a small JSON-over-HTTPS client for Google Cloud REST APIs
// authenticated with an API key. The Vision OCR and Text-to-Speech adapters share it.
package googleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request when the caller supplies no *http.Client.
const DefaultTimeout = 30 * time.Second

// Client posts JSON requests to one Google API host.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	Base   string
	APIKey string
	HTTP   *http.Client
}

// New returns a client for base (e.g. "https://vision.googleapis.com").
// A nil httpClient gets a client with DefaultTimeout.
func New(base, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{Base: strings.TrimRight(base, "/"), APIKey: apiKey, HTTP: httpClient}
}

// APIError is the error body Google APIs return with non-2xx responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Status     string `json:"status"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("google api: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("google api: HTTP %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// PostJSON encodes in, posts it to path with the API key as the "key" query
// parameter and decodes the response into out (which may be nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	u := c.Base + path
	if c.APIKey != "" {
		u += "?key=" + url.QueryEscape(c.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Status = envelope.Error.Status
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// IsUnauthorized reports whether err is an API error for a rejected key.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}
