package capture

import (
	"reflect"
	"testing"
	"time"
)

func TestProbe(t *testing.T) {
	tests := []struct {
		name     string
		provider any
		level    Level
		names    []string
	}{
		{name: "nil", provider: nil, level: LevelNone, names: []string{}},
		{name: "no methods", provider: struct{}{}, level: LevelNone, names: []string{}},
		{
			name:     "full",
			provider: &fakeProvider{},
			level:    LevelFull,
			names:    []string{CapOpenURL, CapCaptureUITree, CapCaptureScreenshot, CapCaptureScreen},
		},
		{
			name:     "screen only",
			provider: screenOnly{&fakeProvider{}},
			level:    LevelScreenOnly,
			names:    []string{CapOpenURL, CapCaptureScreen},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := Probe(tt.provider)
			if got := caps.Level(); got != tt.level {
				t.Errorf("Level() = %q, want %q", got, tt.level)
			}
			if got := caps.Names(); !reflect.DeepEqual(got, tt.names) {
				t.Errorf("Names() = %v, want %v", got, tt.names)
			}
		})
	}
}

func TestCapabilities_TreeOnly(t *testing.T) {
	p := &fakeProvider{}
	caps := Capabilities{CaptureUITree: p.CaptureUITree}
	if caps.Level() != LevelTreeOnly {
		t.Errorf("Level() = %q, want tree_only", caps.Level())
	}
}

func TestSyntheticDocument(t *testing.T) {
	doc := SyntheticDocument("https://dribbble.com/shots/popular", fixedNow)

	if doc.Title != "Popular Designs on Dribbble" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.URL != "https://dribbble.com/shots/popular" {
		t.Errorf("URL = %q", doc.URL)
	}
	if _, err := time.Parse(time.RFC3339, doc.Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", doc.Timestamp, err)
	}
	if len(doc.Elements) != 3 {
		t.Fatalf("elements = %d, want 3", len(doc.Elements))
	}

	header, gallery, footer := doc.Elements[0], doc.Elements[1], doc.Elements[2]
	if header.Type != "header" || header.Text != "Popular designs" || header.Bounds.Width != 100 || header.Bounds.Height != 50 {
		t.Errorf("header = %+v", header)
	}
	if gallery.Type != "gallery" || gallery.ChildCount != 20 || gallery.Bounds.Y != 50 || gallery.Bounds.Height != 800 {
		t.Errorf("gallery = %+v", gallery)
	}
	if footer.Type != "footer" || footer.Text != "© 2023 Dribbble" || footer.Bounds.Y != 850 || footer.Bounds.Width != 1000 {
		t.Errorf("footer = %+v", footer)
	}
}

func TestExecLauncher(t *testing.T) {
	if err := (ExecLauncher{}).Launch("https://example.com"); err != ErrNoExecutable {
		t.Errorf("empty executable err = %v, want ErrNoExecutable", err)
	}
	if err := (ExecLauncher{Executable: "/nonexistent/browser-binary"}).Launch("https://example.com"); err == nil {
		t.Error("expected error for missing executable")
	}
}
