// Package lode archives run inputs and outputs to Lode storage.
//
// Each run writes its files (snapshot document, screenshot, artifact,
// report) under a Hive-partitioned files/ prefix and appends one run
// record to a JSONL dataset partitioned by source, day, run_id and phase.
// Archiving is best effort: callers log and count failures but never let
// them change a run's outcome.
package lode

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// DefaultDataset is the Lode dataset ID for run archives.
const DefaultDataset = "snapclone"

// hiveKeys is the partition layout shared by the write and read paths.
var hiveKeys = []string{"source", "day", "run_id", "phase"}

// DeriveDay computes the partition day from run start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// DeriveSource computes the source partition from a target URL: its host
// with any port removed, or "unknown" when there is none.
func DeriveSource(targetURL string) string {
	u, err := url.Parse(targetURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Config holds archive partition configuration.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// Source is the partition key for the captured site.
	Source string
	// Day is the partition key derived from run start time (YYYY-MM-DD UTC).
	Day string
	// RunID is the partition key for the run identifier.
	RunID string
}

// Validate checks that all partition keys are present.
func (c Config) Validate() error {
	switch {
	case c.Dataset == "":
		return errors.New("archive dataset is required")
	case c.Source == "":
		return errors.New("archive source is required")
	case c.Day == "":
		return errors.New("archive day is required")
	case c.RunID == "":
		return errors.New("archive run_id is required")
	}
	return nil
}

// Archive persists run files and run records.
type Archive interface {
	// PutFile writes a file under the run's files/ prefix.
	// The filename must not contain path separators or "..".
	PutFile(ctx context.Context, filename, contentType string, data []byte) error
	// WriteRun appends a run record to the dataset.
	WriteRun(ctx context.Context, rec RunRecord) error
	// Close releases archive resources.
	Close() error
}
