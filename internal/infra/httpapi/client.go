package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnauthorized reports a 401 from any endpoint. The client also fires the
// registered unauthorized handler before returning it, mirroring the
// broadcast any call site may trigger.
var ErrUnauthorized = errors.New("httpapi: unauthorized")

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   []string        `json:"error,omitempty"`
}

// Client speaks the dashboard backend's REST API. Session affinity rides on
// cookies, so a cookie jar is mandatory; the backend sets the session cookie
// on login and revokes it on logout.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu             sync.RWMutex
	deviceID       string
	onUnauthorized func()
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

// SetUnauthorizedHandler registers the callback fired whenever any request
// comes back 401. The session coordinator hangs its fire-and-forget local
// reset off this hook.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// SetDeviceID attaches the persisted device identifier to every request.
func (c *Client) SetDeviceID(id string) {
	c.mu.Lock()
	c.deviceID = id
	c.mu.Unlock()
}

// do executes one request against the backend. body, when non-nil, is JSON
// encoded; out, when non-nil, receives the envelope's data payload.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	deviceID := c.deviceID
	handler := c.onUnauthorized
	c.mu.RUnlock()
	if deviceID != "" {
		req.Header.Set("X-Device-Id", deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if handler != nil {
			handler()
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", method, path, failureMessage(resp.StatusCode, env))
	}
	if env.Status != "" && env.Status != "success" {
		return fmt.Errorf("%s %s: %s", method, path, failureMessage(resp.StatusCode, env))
	}

	if out != nil {
		if len(env.Data) == 0 {
			return fmt.Errorf("%s %s: response carried no data", method, path)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}

	return nil
}

func failureMessage(status int, env envelope) string {
	if env.Message != "" {
		return env.Message
	}
	if len(env.Error) > 0 {
		return strings.Join(env.Error, "; ")
	}
	return fmt.Sprintf("backend returned status %d", status)
}
