// Package store persists the UI snapshot document and screenshot image
// under a workspace root using fixed relative names.
//
// The capture phase writes through Store and the generation phase reads
// through it; the two phases share nothing else.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pithecene-io/snapclone/iox"
	"github.com/pithecene-io/snapclone/types"
)

// Fixed relative names under the workspace root.
const (
	DocumentName  = "ui_layout.json"
	ImageDir      = "static/screenshots"
	ImageName     = "sample_ui.png"
	ArtifactName  = "generated_ui.jsx"
	filePerm      = 0o644
	directoryPerm = 0o755
)

// Sentinel errors for store failures.
var (
	// ErrNotFound indicates the requested file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDecode indicates the document exists but is not valid JSON.
	ErrDecode = errors.New("decode failed")
)

// Error wraps a store failure with the operation and path.
// Use errors.Is(err, ErrNotFound) or errors.Is(err, ErrDecode) to classify.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Kind)
}

// Unwrap returns both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Store is the workspace-rooted snapshot store.
type Store struct {
	root string
}

// New creates a store rooted at root. An empty root means the current
// directory.
func New(root string) *Store {
	if root == "" {
		root = "."
	}
	return &Store{root: root}
}

// Root returns the workspace root.
func (s *Store) Root() string { return s.root }

// DocumentPath returns the path of the snapshot document.
func (s *Store) DocumentPath() string {
	return filepath.Join(s.root, DocumentName)
}

// ImagePath returns the fixed screenshot path.
func (s *Store) ImagePath() string {
	return filepath.Join(s.root, ImageDir, ImageName)
}

// ArtifactPath returns the fixed generated-artifact path.
func (s *Store) ArtifactPath() string {
	return filepath.Join(s.root, ArtifactName)
}

// WriteDocument serializes doc as 2-space indented JSON and replaces the
// document file.
func (s *Store) WriteDocument(doc *types.Document) error {
	if doc == nil {
		return fmt.Errorf("write document: nil document")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := iox.AtomicWriteFile(s.DocumentPath(), data, filePerm); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// ReadDocument loads and decodes the snapshot document.
func (s *Store) ReadDocument() (*types.Document, error) {
	raw, err := s.ReadDocumentBytes()
	if err != nil {
		return nil, err
	}
	var doc types.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &Error{Op: "read", Path: s.DocumentPath(), Kind: ErrDecode, Err: err}
	}
	return &doc, nil
}

// ReadDocumentBytes returns the raw document bytes.
func (s *Store) ReadDocumentBytes() ([]byte, error) {
	path := s.DocumentPath()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Op: "read", Path: path, Kind: ErrNotFound}
		}
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	return raw, nil
}

// DocumentExists reports whether the document file is present.
func (s *Store) DocumentExists() bool {
	return fileExists(s.DocumentPath())
}

// EnsureImageDir creates the screenshot directory if needed.
func (s *Store) EnsureImageDir() error {
	dir := filepath.Join(s.root, ImageDir)
	if err := os.MkdirAll(dir, directoryPerm); err != nil {
		return fmt.Errorf("create image directory %s: %w", dir, err)
	}
	return nil
}

// WriteImage replaces the screenshot file with data and returns its path.
// A nil or empty data slice produces an empty file.
func (s *Store) WriteImage(data []byte) (string, error) {
	if err := s.EnsureImageDir(); err != nil {
		return "", err
	}
	path := s.ImagePath()
	if err := iox.AtomicWriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

// ImageExists reports whether a file exists at path. An empty file counts.
func (s *Store) ImageExists(path string) bool {
	return fileExists(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
