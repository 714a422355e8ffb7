// Package capture acquires a UI snapshot: a structural document and a
// screenshot image, degrading through fallbacks when the automation
// backend lacks a capability.
package capture

import (
	"context"

	"github.com/pithecene-io/snapclone/types"
)

// Capability names as reported in errors and logs.
const (
	CapOpenURL           = "open_url"
	CapCaptureUITree     = "capture_ui_tree"
	CapCaptureScreenshot = "capture_screenshot"
	CapCaptureScreen     = "capture_screen"
)

// URLOpener opens a URL in a named browser.
type URLOpener interface {
	OpenURL(ctx context.Context, url, browser string) error
}

// TreeCapturer returns the structural UI tree of the current page.
type TreeCapturer interface {
	CaptureUITree(ctx context.Context) (*types.Document, error)
}

// ScreenshotCapturer writes a screenshot directly to path.
type ScreenshotCapturer interface {
	CaptureScreenshot(ctx context.Context, path string) error
}

// ScreenCapturer returns a base64-encoded capture of the screen.
type ScreenCapturer interface {
	CaptureScreen(ctx context.Context) (*ScreenCapture, error)
}

// ScreenCapture is the result of a whole-screen capture.
type ScreenCapture struct {
	ImageBase64 string `json:"image_base64"`
}

// Capabilities is the resolved set of operations a provider supports.
// A nil field means the provider lacks that capability.
type Capabilities struct {
	OpenURL           func(ctx context.Context, url, browser string) error
	CaptureUITree     func(ctx context.Context) (*types.Document, error)
	CaptureScreenshot func(ctx context.Context, path string) error
	CaptureScreen     func(ctx context.Context) (*ScreenCapture, error)
}

// Level summarizes how much of a snapshot can be captured live.
type Level string

// Capability levels.
const (
	LevelFull       Level = "full"
	LevelTreeOnly   Level = "tree_only"
	LevelScreenOnly Level = "screen_only"
	LevelNone       Level = "none"
)

// Probe resolves the capabilities of provider once. A nil provider yields
// empty Capabilities.
func Probe(provider any) Capabilities {
	var caps Capabilities
	if provider == nil {
		return caps
	}
	if p, ok := provider.(URLOpener); ok {
		caps.OpenURL = p.OpenURL
	}
	if p, ok := provider.(TreeCapturer); ok {
		caps.CaptureUITree = p.CaptureUITree
	}
	if p, ok := provider.(ScreenshotCapturer); ok {
		caps.CaptureScreenshot = p.CaptureScreenshot
	}
	if p, ok := provider.(ScreenCapturer); ok {
		caps.CaptureScreen = p.CaptureScreen
	}
	return caps
}

// Level reports the capture level these capabilities allow.
func (c Capabilities) Level() Level {
	tree := c.CaptureUITree != nil
	image := c.CaptureScreenshot != nil || c.CaptureScreen != nil
	switch {
	case tree && image:
		return LevelFull
	case tree:
		return LevelTreeOnly
	case image:
		return LevelScreenOnly
	default:
		return LevelNone
	}
}

// Names lists the supported capability names in a stable order.
func (c Capabilities) Names() []string {
	names := []string{}
	if c.OpenURL != nil {
		names = append(names, CapOpenURL)
	}
	if c.CaptureUITree != nil {
		names = append(names, CapCaptureUITree)
	}
	if c.CaptureScreenshot != nil {
		names = append(names, CapCaptureScreenshot)
	}
	if c.CaptureScreen != nil {
		names = append(names, CapCaptureScreen)
	}
	return names
}
