// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single run. It is a leaf
// package with no internal dependencies; callers translate their own
// outcome types into the string-keyed increments below.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Run lifecycle
	RunsStarted   int64 `json:"runs_started"`
	RunsCompleted int64 `json:"runs_completed"`
	RunsFailed    int64 `json:"runs_failed"`

	// Capture
	DocumentsBySource map[string]int64 `json:"documents_by_source"`
	ImagesBySource    map[string]int64 `json:"images_by_source"`
	CaptureWarnings   int64            `json:"capture_warnings"`
	CapabilityErrors  int64            `json:"capability_errors"`

	// Generation
	GenerationSuccess    int64            `json:"generation_success"`
	GenerationFailures   int64            `json:"generation_failures"`
	GenerationFailByKind map[string]int64 `json:"generation_fail_by_kind"`

	// Archive / notifications
	ArchiveWriteSuccess int64 `json:"archive_write_success"`
	ArchiveWriteFailure int64 `json:"archive_write_failure"`
	NotifySuccess       int64 `json:"notify_success"`
	NotifyFailure       int64 `json:"notify_failure"`

	// Dimensions (informational, set at construction)
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	StorageBackend string `json:"storage_backend"`
	RunID          string `json:"run_id"`
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	runsStarted   int64
	runsCompleted int64
	runsFailed    int64

	documentsBySource map[string]int64
	imagesBySource    map[string]int64
	captureWarnings   int64
	capabilityErrors  int64

	generationSuccess    int64
	generationFailures   int64
	generationFailByKind map[string]int64

	archiveWriteSuccess int64
	archiveWriteFailure int64
	notifySuccess       int64
	notifyFailure       int64

	provider       string
	model          string
	storageBackend string
	runID          string
}

// NewCollector creates a Collector with dimension labels.
// Empty dimensions are allowed.
func NewCollector(provider, model, storageBackend, runID string) *Collector {
	return &Collector{
		documentsBySource:    make(map[string]int64),
		imagesBySource:       make(map[string]int64),
		generationFailByKind: make(map[string]int64),
		provider:             provider,
		model:                model,
		storageBackend:       storageBackend,
		runID:                runID,
	}
}

// inc runs fn under the lock. No-op on a nil Collector.
func (c *Collector) inc(fn func()) {
	if c == nil {
		return
	}
	c.mu.Lock()
	fn()
	c.mu.Unlock()
}

// --- Run lifecycle ---

// IncRunStarted records a run start.
func (c *Collector) IncRunStarted() { c.inc(func() { c.runsStarted++ }) }

// IncRunCompleted records a successful run completion.
func (c *Collector) IncRunCompleted() { c.inc(func() { c.runsCompleted++ }) }

// IncRunFailed records a run that ended in a capture or generation error.
func (c *Collector) IncRunFailed() { c.inc(func() { c.runsFailed++ }) }

// --- Capture ---

// IncDocumentSource records where a captured document came from
// (live or synthetic).
func (c *Collector) IncDocumentSource(source string) {
	c.inc(func() { c.documentsBySource[source]++ })
}

// IncImageSource records how a screenshot was produced.
func (c *Collector) IncImageSource(source string) {
	c.inc(func() { c.imagesBySource[source]++ })
}

// AddCaptureWarnings records n non-fatal capture warnings.
func (c *Collector) AddCaptureWarnings(n int) {
	c.inc(func() { c.captureWarnings += int64(n) })
}

// IncCapabilityError records a failure inside a live capture capability.
func (c *Collector) IncCapabilityError() { c.inc(func() { c.capabilityErrors++ }) }

// --- Generation ---

// IncGenerationSuccess records a saved artifact.
func (c *Collector) IncGenerationSuccess() { c.inc(func() { c.generationSuccess++ }) }

// IncGenerationFailure records a failed generation by error kind.
func (c *Collector) IncGenerationFailure(kind string) {
	c.inc(func() {
		c.generationFailures++
		c.generationFailByKind[kind]++
	})
}

// --- Archive / notifications ---

// IncArchiveWriteSuccess records a successful archive write.
func (c *Collector) IncArchiveWriteSuccess() { c.inc(func() { c.archiveWriteSuccess++ }) }

// IncArchiveWriteFailure records a failed archive write.
func (c *Collector) IncArchiveWriteFailure() { c.inc(func() { c.archiveWriteFailure++ }) }

// IncNotifySuccess records a delivered notification.
func (c *Collector) IncNotifySuccess() { c.inc(func() { c.notifySuccess++ }) }

// IncNotifyFailure records a notification that could not be delivered.
func (c *Collector) IncNotifyFailure() { c.inc(func() { c.notifyFailure++ }) }

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		RunsStarted:   c.runsStarted,
		RunsCompleted: c.runsCompleted,
		RunsFailed:    c.runsFailed,

		DocumentsBySource: copyCounts(c.documentsBySource),
		ImagesBySource:    copyCounts(c.imagesBySource),
		CaptureWarnings:   c.captureWarnings,
		CapabilityErrors:  c.capabilityErrors,

		GenerationSuccess:    c.generationSuccess,
		GenerationFailures:   c.generationFailures,
		GenerationFailByKind: copyCounts(c.generationFailByKind),

		ArchiveWriteSuccess: c.archiveWriteSuccess,
		ArchiveWriteFailure: c.archiveWriteFailure,
		NotifySuccess:       c.notifySuccess,
		NotifyFailure:       c.notifyFailure,

		Provider:       c.provider,
		Model:          c.model,
		StorageBackend: c.storageBackend,
		RunID:          c.runID,
	}
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
