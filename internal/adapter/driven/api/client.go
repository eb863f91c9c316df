// Package api implements the CostRepository over the REST API of the cost backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// maxErrorBody limits how much of an error response ends up in the error message.
const maxErrorBody = 512

// Client talks to the backend API. Every call carries the Bearer token and a fresh
// X-Request-ID.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. timeout <= 0 means no client-side timeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	httpClient := &http.Client{}
	if timeout > 0 {
		httpClient.Timeout = timeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// HTTPError is returned for responses with status >= 400.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// do sends the request and decodes the payload into out. Bodies wrapped in a
// {"success","data","error"} envelope are unwrapped first.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response of %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	data, err := unwrap(raw)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response of %s %s: %w", method, path, err)
	}
	return nil
}

// unwrap returns the payload of an envelope, or raw when the body is not one.
func unwrap(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid JSON response")
	}

	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return raw, nil
	}
	success, data, apiErr := parsed.Get("success"), parsed.Get("data"), parsed.Get("error")
	// Bodies such as the sync result carry "success" without being an envelope.
	if !success.Exists() || (!data.Exists() && !apiErr.Exists()) {
		return raw, nil
	}
	if !success.Bool() {
		msg := apiErr.String()
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, fmt.Errorf("api error: %s", msg)
	}
	if !data.Exists() {
		return nil, nil
	}
	return []byte(data.Raw), nil
}

func errorMessage(raw []byte) string {
	if gjson.ValidBytes(raw) {
		parsed := gjson.ParseBytes(raw)
		for _, key := range []string{"error", "message", "detail"} {
			if msg := parsed.Get(key); msg.Exists() && msg.Type == gjson.String {
				return msg.String()
			}
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}
