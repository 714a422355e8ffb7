// Package reader provides the read-side data access layer for the
// snapclone CLI.
//
// Read-only commands (inspect, runs, stats) get their data exclusively
// through this package: the snapshot workspace on disk, run reports and
// the Lode run archive.
package reader

import "time"

// FileInfo describes a workspace file.
type FileInfo struct {
	Path       string     `json:"path" yaml:"path"`
	Exists     bool       `json:"exists" yaml:"exists"`
	Bytes      int64      `json:"bytes" yaml:"bytes"`
	ModifiedAt *time.Time `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`
}

// ImageInfo describes the screenshot file. Width and Height are zero
// when the file is empty or not a decodable PNG.
type ImageInfo struct {
	FileInfo `yaml:",inline"`
	Width    int `json:"width" yaml:"width"`
	Height   int `json:"height" yaml:"height"`
}

// InspectDocumentResponse summarizes the snapshot workspace.
type InspectDocumentResponse struct {
	Path      string         `json:"path" yaml:"path"`
	Timestamp string         `json:"timestamp" yaml:"timestamp"`
	URL       string         `json:"url" yaml:"url"`
	Title     string         `json:"title" yaml:"title"`
	Synthetic bool           `json:"synthetic" yaml:"synthetic"`
	Elements  int            `json:"elements" yaml:"elements"`
	Types     map[string]int `json:"types" yaml:"types"`
	Image     ImageInfo      `json:"image" yaml:"image"`
	Artifact  FileInfo       `json:"artifact" yaml:"artifact"`
}

// ElementRow is one snapshot element flattened for table output.
type ElementRow struct {
	Index      int     `json:"index" yaml:"index"`
	Type       string  `json:"type" yaml:"type"`
	Text       string  `json:"text" yaml:"text"`
	ChildCount int     `json:"child_count" yaml:"child_count"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
}

// ListRunsOptions filters archived runs.
type ListRunsOptions struct {
	RunID  string
	Source string
	Phase  string
	Limit  int
}

// ListRunItem is one archived run record.
type ListRunItem struct {
	RunID      string `json:"run_id" yaml:"run_id"`
	Phase      string `json:"phase" yaml:"phase"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	ErrorKind  string `json:"error_kind" yaml:"error_kind"`
	TargetURL  string `json:"target_url" yaml:"target_url"`
	StartedAt  string `json:"started_at" yaml:"started_at"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
	Files      int    `json:"files" yaml:"files"`
}

// RunStats aggregates archived runs.
type RunStats struct {
	Total         int            `json:"total" yaml:"total"`
	Succeeded     int            `json:"succeeded" yaml:"succeeded"`
	Failed        int            `json:"failed" yaml:"failed"`
	ByPhase       map[string]int `json:"by_phase" yaml:"by_phase"`
	ByErrorKind   map[string]int `json:"by_error_kind" yaml:"by_error_kind"`
	Documents     map[string]int `json:"documents_by_source" yaml:"documents_by_source"`
	Images        map[string]int `json:"images_by_source" yaml:"images_by_source"`
	AvgDurationMS int64          `json:"avg_duration_ms" yaml:"avg_duration_ms"`
	LastRunID     string         `json:"last_run_id" yaml:"last_run_id"`
}
