package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/pithecene-io/snapclone/log"
	"github.com/pithecene-io/snapclone/store"
	"github.com/pithecene-io/snapclone/types"
)

// DefaultSettleDelay is the wait between navigation and capture.
const DefaultSettleDelay = 5 * time.Second

// DefaultBrowserName is passed to OpenURL.
const DefaultBrowserName = "chrome"

// DocumentSource records where the snapshot document came from.
type DocumentSource string

// Document sources.
const (
	DocumentLive      DocumentSource = "live"
	DocumentSynthetic DocumentSource = "synthetic"
)

// ImageSource records how the screenshot file was produced.
type ImageSource string

// Image sources, in fallback order.
const (
	ImageScreenshot  ImageSource = "screenshot"
	ImageScreen      ImageSource = "screen"
	ImagePlaceholder ImageSource = "placeholder"
	ImageEmpty       ImageSource = "empty"
)

// WarningKind classifies a non-fatal capture problem.
type WarningKind string

// Warning kinds.
const (
	WarnNavigate          WarningKind = "navigate_failed"
	WarnSyntheticDocument WarningKind = "synthetic_document"
	WarnPlaceholderImage  WarningKind = "placeholder_image"
	WarnEmptyImage        WarningKind = "empty_image"
)

// Warning is a non-fatal capture problem. The run continues.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Report describes a completed capture run.
type Report struct {
	Level          Level          `json:"level"`
	DocumentSource DocumentSource `json:"document_source"`
	ImageSource    ImageSource    `json:"image_source"`
	DocumentPath   string         `json:"document_path"`
	ImagePath      string         `json:"image_path"`
	ImageBytes     int64          `json:"image_bytes"`
	Elements       int            `json:"elements"`
	Warnings       []Warning      `json:"warnings,omitempty"`
}

// Degraded reports whether any part of the snapshot is not live.
func (r *Report) Degraded() bool {
	return r.DocumentSource != DocumentLive ||
		(r.ImageSource != ImageScreenshot && r.ImageSource != ImageScreen)
}

// Acquirer runs the navigate, settle, capture sequence.
type Acquirer struct {
	caps        Capabilities
	store       *store.Store
	launcher    Launcher
	logger      *log.Logger
	progress    func(string)
	settle      time.Duration
	browserName string
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
	placeholder func() ([]byte, error)
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithLauncher sets the fallback browser launcher.
func WithLauncher(l Launcher) Option {
	return func(a *Acquirer) { a.launcher = l }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Acquirer) { a.logger = l }
}

// WithProgress sets a sink for human-readable progress lines.
func WithProgress(fn func(string)) Option {
	return func(a *Acquirer) { a.progress = fn }
}

// WithSettleDelay overrides the post-navigation wait.
func WithSettleDelay(d time.Duration) Option {
	return func(a *Acquirer) { a.settle = d }
}

// WithBrowserName overrides the browser name passed to OpenURL.
func WithBrowserName(name string) Option {
	return func(a *Acquirer) { a.browserName = name }
}

// WithSleep replaces the settle sleep. Used by tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(a *Acquirer) { a.sleep = fn }
}

// WithClock replaces the timestamp source. Used by tests.
func WithClock(fn func() time.Time) Option {
	return func(a *Acquirer) { a.now = fn }
}

// WithPlaceholder replaces the placeholder renderer. Used by tests.
func WithPlaceholder(fn func() ([]byte, error)) Option {
	return func(a *Acquirer) { a.placeholder = fn }
}

// NewAcquirer creates an acquirer over already-probed capabilities.
func NewAcquirer(caps Capabilities, st *store.Store, opts ...Option) *Acquirer {
	a := &Acquirer{
		caps:        caps,
		store:       st,
		logger:      log.NewNopLogger(),
		progress:    func(string) {},
		settle:      DefaultSettleDelay,
		browserName: DefaultBrowserName,
		sleep:       sleepContext,
		now:         time.Now,
		placeholder: RenderPlaceholder,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Capabilities returns the probed capabilities.
func (a *Acquirer) Capabilities() Capabilities { return a.caps }

// Acquire captures a snapshot of url and persists it through the store.
//
// Missing capabilities degrade to fallbacks and are recorded as warnings.
// A failure inside a live tree or screenshot capability returns a
// *CapabilityError. Document write failures are returned as-is.
func (a *Acquirer) Acquire(ctx context.Context, url string) (*Report, error) {
	report := &Report{
		Level:        a.caps.Level(),
		DocumentPath: a.store.DocumentPath(),
		ImagePath:    a.store.ImagePath(),
	}

	if err := a.store.EnsureImageDir(); err != nil {
		return nil, err
	}

	a.progress("Opening browser...")
	a.navigate(ctx, url, report)

	a.progress("Waiting for site to load...")
	if err := a.sleep(ctx, a.settle); err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}

	a.progress("Capturing UI tree...")
	doc, err := a.captureDocument(ctx, url, report)
	if err != nil {
		return nil, err
	}
	if err := a.store.WriteDocument(doc); err != nil {
		return nil, err
	}
	report.Elements = len(doc.Elements)
	a.progress("UI layout saved to " + report.DocumentPath)

	if err := a.captureImage(ctx, report); err != nil {
		return nil, err
	}
	if info, err := os.Stat(report.ImagePath); err == nil {
		report.ImageBytes = info.Size()
	}
	a.progress("Screenshot saved to " + report.ImagePath)

	a.logger.Info("capture completed", map[string]any{
		"level":           string(report.Level),
		"document_source": string(report.DocumentSource),
		"image_source":    string(report.ImageSource),
		"elements":        report.Elements,
		"image_bytes":     report.ImageBytes,
		"warnings":        len(report.Warnings),
	})
	return report, nil
}

func (a *Acquirer) navigate(ctx context.Context, url string, report *Report) {
	var err error
	switch {
	case a.caps.OpenURL != nil:
		err = a.caps.OpenURL(ctx, url, a.browserName)
		if err == nil {
			a.logger.Info("opened url via provider", map[string]any{"browser": a.browserName})
		}
	case a.launcher != nil:
		err = a.launcher.Launch(url)
		if err == nil {
			a.logger.Info("opened url via local browser", nil)
		}
	default:
		err = ErrNoExecutable
	}
	if err == nil {
		return
	}

	a.warn(report, WarnNavigate, fmt.Sprintf("could not open browser automatically: %v", err))
	a.progress("Please open the browser manually and navigate to: " + url)
}

func (a *Acquirer) captureDocument(ctx context.Context, url string, report *Report) (*types.Document, error) {
	if a.caps.CaptureUITree != nil {
		doc, err := a.caps.CaptureUITree(ctx)
		if err != nil {
			return nil, &CapabilityError{Capability: CapCaptureUITree, Err: err}
		}
		if doc == nil {
			return nil, &CapabilityError{Capability: CapCaptureUITree, Err: fmt.Errorf("provider returned no document")}
		}
		report.DocumentSource = DocumentLive
		return doc, nil
	}

	a.warn(report, WarnSyntheticDocument, "capture_ui_tree unavailable, using synthetic document")
	report.DocumentSource = DocumentSynthetic
	return SyntheticDocument(url, a.now()), nil
}

func (a *Acquirer) captureImage(ctx context.Context, report *Report) error {
	if a.caps.CaptureScreenshot != nil {
		if err := a.caps.CaptureScreenshot(ctx, report.ImagePath); err != nil {
			return &CapabilityError{Capability: CapCaptureScreenshot, Err: err}
		}
		report.ImageSource = ImageScreenshot
		return nil
	}

	data, source, err := a.fallbackImage(ctx, report)
	if err != nil {
		a.warn(report, WarnEmptyImage, fmt.Sprintf("could not create screenshot: %v", err))
		data, source = nil, ImageEmpty
	}
	if _, err := a.store.WriteImage(data); err != nil {
		return err
	}
	report.ImageSource = source
	return nil
}

// fallbackImage produces screenshot bytes without the screenshot
// capability: a decoded screen capture when available, else the
// placeholder render.
func (a *Acquirer) fallbackImage(ctx context.Context, report *Report) ([]byte, ImageSource, error) {
	if a.caps.CaptureScreen != nil {
		shot, err := a.caps.CaptureScreen(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", CapCaptureScreen, err)
		}
		if shot == nil {
			return nil, "", fmt.Errorf("%s: empty response", CapCaptureScreen)
		}
		data, err := base64.StdEncoding.DecodeString(shot.ImageBase64)
		if err != nil {
			return nil, "", fmt.Errorf("decode screen capture: %w", err)
		}
		if len(data) == 0 {
			return nil, "", fmt.Errorf("%s: empty image", CapCaptureScreen)
		}
		return data, ImageScreen, nil
	}

	a.warn(report, WarnPlaceholderImage, "capture_screenshot unavailable, rendering placeholder")
	data, err := a.placeholder()
	if err != nil {
		return nil, "", err
	}
	return data, ImagePlaceholder, nil
}

func (a *Acquirer) warn(report *Report, kind WarningKind, message string) {
	report.Warnings = append(report.Warnings, Warning{Kind: kind, Message: message})
	a.logger.Warn(message, map[string]any{"warning": string(kind)})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
