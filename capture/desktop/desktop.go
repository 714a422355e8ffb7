// Package desktop is a capture provider for a desktop automation HTTP
// server. It can open URLs and capture the whole screen, but cannot
// produce a UI tree.
package desktop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/iox"
)

// DefaultURL is the automation server's default address.
const DefaultURL = "http://127.0.0.1:9375"

// DefaultTimeout bounds each request.
const DefaultTimeout = 30 * time.Second

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("desktop %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the automation server.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client. An empty baseURL uses DefaultURL.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: httpClient}
}

type openURLRequest struct {
	URL     string `json:"url"`
	Browser string `json:"browser"`
}

// OpenURL asks the server to open url in the named browser.
func (c *Client) OpenURL(ctx context.Context, url, browser string) error {
	return c.post(ctx, "/open_url", openURLRequest{URL: url, Browser: browser}, nil)
}

// CaptureScreen asks the server for a base64 screen capture.
func (c *Client) CaptureScreen(ctx context.Context) (*capture.ScreenCapture, error) {
	var out capture.ScreenCapture
	if err := c.post(ctx, "/capture_screen", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("desktop %s: %w", endpoint, err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(excerpt)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
