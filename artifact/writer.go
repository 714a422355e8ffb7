// Package artifact persists generated component source text.
package artifact

import (
	"errors"
	"fmt"

	"github.com/pithecene-io/snapclone/iox"
)

// ErrEmptyPath is returned when a Writer has no destination.
var ErrEmptyPath = errors.New("artifact path is empty")

// Writer overwrites a fixed artifact path with generated text.
type Writer struct {
	path string
}

// NewWriter creates a writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the destination path.
func (w *Writer) Path() string { return w.path }

// Write replaces the artifact with text verbatim and returns its path.
// Any existing file is overwritten without prompting.
func (w *Writer) Write(text string) (string, error) {
	if w.path == "" {
		return "", ErrEmptyPath
	}
	if err := iox.AtomicWriteFile(w.path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return w.path, nil
}
