// Package types defines the core domain types shared by the snapclone
// capture and generation phases.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// Phase identifies which half of the pipeline a run executes.
type Phase string

const (
	// PhaseCapture acquires a UI snapshot and persists it.
	PhaseCapture Phase = "capture"
	// PhaseGenerate turns a persisted snapshot into a component.
	PhaseGenerate Phase = "generate"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == PhaseCapture || p == PhaseGenerate
}

// RunMeta carries run identity. Every log entry, archive path and
// notification of a run is keyed by it.
type RunMeta struct {
	// RunID is the run identifier. Must be non-empty.
	RunID string
	// Phase is the pipeline phase executed by the run.
	Phase Phase
	// TargetURL is the page the snapshot was (or will be) taken from.
	// Empty for generation runs that do not know the source page yet.
	TargetURL string
}

// Validate checks that the run identity is usable.
func (r *RunMeta) Validate() error {
	if r.RunID == "" {
		return errors.New("run_id must be non-empty")
	}
	if !r.Phase.Valid() {
		return fmt.Errorf("unknown phase %q", r.Phase)
	}
	return nil
}

// OutcomeStatus is the final classification of a run.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates the phase produced its output.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeGenerationError indicates the generation phase returned a
	// typed error result.
	OutcomeGenerationError OutcomeStatus = "generation_error"
	// OutcomeCaptureFailure indicates the capture phase aborted.
	OutcomeCaptureFailure OutcomeStatus = "capture_failure"
)

// RunOutcome is the final outcome of a run.
type RunOutcome struct {
	// Status is the outcome classification.
	Status OutcomeStatus
	// Message is a human-readable description.
	Message string
	// ErrorKind is set for generation errors.
	ErrorKind *ErrorKind
}
