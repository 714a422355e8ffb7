// Package adapter defines the notification boundary for completed runs.
//
// Adapters publish phase completion notifications to downstream systems.
// The runtime owns adapter lifecycle; users provide configuration only.
// Delivery is best effort: a failed publish never changes a run's outcome.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Event types.
const (
	EventCaptureCompleted    = "capture_completed"
	EventGenerationCompleted = "generation_completed"
)

// PhaseCompletedEvent is the payload published when a capture or
// generation phase finishes.
type PhaseCompletedEvent struct {
	EventType string `json:"event_type"`
	Version   string `json:"version"`
	RunID     string `json:"run_id"`
	Phase     string `json:"phase"`
	TargetURL string `json:"target_url,omitempty"`
	Outcome   string `json:"outcome"`
	ErrorKind string `json:"error_kind,omitempty"`
	Message   string `json:"message,omitempty"`

	// Capture phase
	DocumentPath   string `json:"document_path,omitempty"`
	ImagePath      string `json:"image_path,omitempty"`
	DocumentSource string `json:"document_source,omitempty"`
	ImageSource    string `json:"image_source,omitempty"`

	// Generation phase
	ArtifactPath string `json:"artifact_path,omitempty"`

	// ArchivePath is the run's files/ prefix when archiving is enabled.
	ArchivePath string `json:"archive_path,omitempty"`
	Timestamp   string `json:"timestamp"` // RFC 3339
	DurationMs  int64  `json:"duration_ms"`
}

// Adapter publishes phase completion events to a downstream system.
type Adapter interface {
	// Publish sends an event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *PhaseCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// BaseBackoff is the delay before the first retry.
const BaseBackoff = 500 * time.Millisecond

// Backoff returns the delay before retry i (1-based): BaseBackoff * 2^(i-1).
func Backoff(i int) time.Duration {
	if i < 1 {
		return 0
	}
	return time.Duration(1<<uint(i-1)) * BaseBackoff
}

// ErrPermanent marks an error that must not be retried.
var ErrPermanent = errors.New("non-retriable")

// Retry calls fn up to 1+retries times with exponential backoff between
// attempts. It stops early when fn returns an error wrapping ErrPermanent
// or when ctx is done. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, fn func(ctx context.Context) error) error {
	var lastErr error
	// attempts = 1 initial + retries
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		// Exponential backoff before retries (not before first attempt)
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(Backoff(i)):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPermanent) {
			return fmt.Errorf("%s: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
