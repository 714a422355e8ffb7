package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pithecene-io/snapclone/artifact"
	"github.com/pithecene-io/snapclone/iox"
	"github.com/pithecene-io/snapclone/log"
	"github.com/pithecene-io/snapclone/store"
	"github.com/pithecene-io/snapclone/types"
)

// Defaults.
const (
	DefaultBaseURL    = "https://api.groq.com/openai/v1"
	DefaultModel      = "llama3-8b-8192"
	DefaultMaxTokens  = 4000
	DefaultTimeout    = 120 * time.Second
	DefaultRetryDelay = 500 * time.Millisecond
	// ExcerptLimit caps response excerpts in trails and errors.
	ExcerptLimit = 200
	// CompletionsPath is appended to the base URL.
	CompletionsPath = "/chat/completions"
)

// Config configures the generation client.
type Config struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string
	// APIKey is sent as a bearer token.
	APIKey string
	// Model is the completion model name.
	Model string
	// MaxTokens caps the completion length.
	MaxTokens int
	// Retries is the number of extra attempts after a transport error.
	// HTTP status responses are never retried.
	Retries int
	// RetryDelay is the base backoff; attempt n waits RetryDelay * 2^(n-1).
	RetryDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
}

// Client runs one generation per Generate call.
type Client struct {
	cfg      Config
	http     *http.Client
	store    *store.Store
	writer   *artifact.Writer
	logger   *log.Logger
	counter  *TokenCounter
	sleep    func(ctx context.Context, d time.Duration) error
	endpoint string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTokenCounter sets the prompt token estimator. Nil disables it.
func WithTokenCounter(tc *TokenCounter) Option {
	return func(c *Client) { c.counter = tc }
}

// WithSleep replaces the retry backoff sleep. Used by tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// New creates a client reading from st and writing through w.
func New(cfg Config, st *store.Store, w *artifact.Writer, opts ...Option) *Client {
	cfg.applyDefaults()
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: DefaultTimeout},
		store:   st,
		writer:  w,
		logger:  log.NewNopLogger(),
		counter: NewTokenCounter(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.endpoint = c.cfg.BaseURL + CompletionsPath
	return c
}

// Endpoint returns the completion URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Model returns the configured completion model.
func (c *Client) Model() string { return c.cfg.Model }

// Generate turns the stored snapshot document into an artifact.
// Every branch appends to the trail before returning, and the trail is
// returned with both outcomes.
func (c *Client) Generate(ctx context.Context, imagePath string) *types.Result {
	trail := types.NewTrail()
	trail.Addf("Starting image processing for %s", imagePath)

	docPath := c.store.DocumentPath()
	if !c.store.DocumentExists() {
		trail.Addf("UI layout not found at %s", docPath)
		return types.Fail(trail, types.ErrMissingDocument,
			fmt.Sprintf("%s not found; run a capture first", docPath))
	}

	if !c.store.ImageExists(imagePath) {
		trail.Addf("Image not found at %s", imagePath)
		return types.Fail(trail, types.ErrMissingImage,
			fmt.Sprintf("image file not found at %s", imagePath))
	}
	// The image is validated but not sent: the model is text-only.
	image, err := os.ReadFile(imagePath)
	if err != nil {
		trail.Addf("Error reading image: %v", err)
		return types.Fail(trail, types.ErrMissingImage,
			fmt.Sprintf("error reading image file: %v", err))
	}
	trail.Addf("Loaded image with %d base64 characters", base64.StdEncoding.EncodedLen(len(image)))

	raw, err := c.store.ReadDocumentBytes()
	if err == nil {
		_, err = decodeDocument(raw)
	}
	if err != nil {
		trail.Addf("Failed to decode UI data: %v", err)
		kind := types.ErrDecode
		if errors.Is(err, store.ErrNotFound) {
			kind = types.ErrMissingDocument
		}
		return types.Fail(trail, kind, err.Error())
	}
	trail.Addf("Loaded UI data with %d characters", dumpedLen(raw))

	payload, err := BuildPayload(raw, c.cfg.Model, c.cfg.MaxTokens)
	if err != nil {
		trail.Addf("Failed to decode UI data: %v", err)
		return types.Fail(trail, types.ErrDecode, err.Error())
	}
	trail.Addf("Prepared API payload with model %s", payload.Model)
	c.logPromptSize(payload)

	body, err := json.Marshal(payload)
	if err != nil {
		trail.Addf("Exception: %v", err)
		return types.Fail(trail, types.ErrTransport, err.Error())
	}

	status, respBody, err := c.send(ctx, body, trail)
	if err != nil {
		return types.Fail(trail, types.ErrTransport, fmt.Sprintf("request error: %v", err))
	}

	if status != http.StatusOK {
		ex := excerpt(string(respBody), ExcerptLimit)
		trail.Addf("Error response: %s...", ex)
		res := types.Fail(trail, types.ErrRequestFailed, fmt.Sprintf("%d - %s", status, ex))
		res.Err.Status = status
		res.Err.BodyExcerpt = ex
		return res
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		ex := excerpt(string(respBody), ExcerptLimit)
		trail.Addf("Unexpected response format: %s...", ex)
		res := types.Fail(trail, types.ErrUnexpectedFormat, fmt.Sprintf("unparsable response: %v", err))
		res.Err.BodyExcerpt = ex
		return res
	}
	trail.Addf("Successfully parsed JSON response")

	content, ok := parsed.content()
	if !ok {
		ex := excerpt(compactString(respBody), ExcerptLimit)
		trail.Addf("Unexpected response format: %s...", ex)
		res := types.Fail(trail, types.ErrUnexpectedFormat, "unexpected response format")
		res.Err.BodyExcerpt = ex
		return res
	}
	trail.Addf("Extracted JSX content with %d characters", len([]rune(content)))

	path, err := c.writer.Write(content)
	if err != nil {
		trail.Addf("Failed to save generated component: %v", err)
		return types.Fail(trail, types.ErrWriteFailed, err.Error())
	}
	trail.Addf("Saved generated component to %s", path)

	c.logger.Info("generation completed", map[string]any{
		"artifact_path": path,
		"chars":         len([]rune(content)),
	})

	return &types.Result{
		Artifact:     content,
		ArtifactPath: path,
		Message:      fmt.Sprintf("JSX code has been generated and saved to %s", path),
		Trail:        trail.Entries(),
	}
}

// send posts body, retrying transport errors up to cfg.Retries times.
func (c *Client) send(ctx context.Context, body []byte, trail *types.Trail) (int, []byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryDelay * time.Duration(1<<(attempt-1))
			trail.Addf("Retrying request (attempt %d of %d) after %s", attempt+1, c.cfg.Retries+1, delay)
			if err := c.sleep(ctx, delay); err != nil {
				trail.Addf("Exception: %v", err)
				return 0, nil, err
			}
		}

		trail.Addf("Sending request to generation API...")
		status, respBody, err := c.post(ctx, body)
		if err != nil {
			trail.Addf("Exception: %v", err)
			c.logger.Warn("generation request failed", map[string]any{
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
			lastErr = err
			if ctx.Err() != nil {
				return 0, nil, lastErr
			}
			continue
		}
		trail.Addf("Received response with status code %d", status)
		return status, respBody, nil
	}
	return 0, nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer iox.DiscardClose(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) logPromptSize(p *Payload) {
	if c.counter == nil {
		return
	}
	n, err := c.counter.CountPayload(p)
	if err != nil {
		c.logger.Debug("token estimate unavailable", map[string]any{"error": err.Error()})
		return
	}
	c.logger.Info("prepared generation payload", map[string]any{
		"model":         p.Model,
		"max_tokens":    p.MaxTokens,
		"prompt_tokens": n,
	})
}

func decodeDocument(raw []byte) (*types.Document, error) {
	var doc types.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func compactString(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
