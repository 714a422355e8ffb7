//nolint:revive // types is a common Go package naming convention
package types

// Document is the UI snapshot document persisted between the capture and
// generation phases. It is overwritten wholesale on every capture run.
//
// Elements are kept in capture order (top-to-bottom, outer-to-inner). The
// order is meaningful to the generation prompt but not validated.
type Document struct {
	// Timestamp is the capture time in RFC 3339 format.
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	// URL is the page the snapshot was taken from.
	URL string `json:"url" yaml:"url"`
	// Title is the page title.
	Title string `json:"title" yaml:"title"`
	// Elements are the captured on-screen elements.
	Elements []Element `json:"elements" yaml:"elements"`
}

// Element is a single captured on-screen element.
type Element struct {
	// Type is the element kind (header, gallery, footer, nav, ...).
	Type string `json:"type" yaml:"type"`
	// Text is the visible text, if any.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	// ChildCount is the number of child items for container elements.
	ChildCount int `json:"childCount,omitempty" yaml:"childCount,omitempty"`
	// Bounds is the element's on-screen rectangle in CSS pixels.
	Bounds Bounds `json:"bounds" yaml:"bounds"`
}

// Bounds is an on-screen rectangle.
type Bounds struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}
