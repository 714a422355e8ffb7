// Package runtime orchestrates one capture or generation run: it executes
// the phase, classifies the outcome, then archives the run's files and
// publishes a completion notification on a best-effort basis.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pithecene-io/snapclone/adapter"
	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/lode"
	"github.com/pithecene-io/snapclone/log"
	"github.com/pithecene-io/snapclone/metrics"
	"github.com/pithecene-io/snapclone/store"
	"github.com/pithecene-io/snapclone/types"
)

// DefaultPostRunTimeout bounds archiving and notification after a phase.
const DefaultPostRunTimeout = 30 * time.Second

// Capturer acquires a UI snapshot. Satisfied by *capture.Acquirer.
type Capturer interface {
	Acquire(ctx context.Context, url string) (*capture.Report, error)
}

// Generator turns the stored snapshot into an artifact.
// Satisfied by *generate.Client.
type Generator interface {
	Generate(ctx context.Context, imagePath string) *types.Result
}

// RunConfig configures a single run.
type RunConfig struct {
	// RunMeta is the run identity. Phase selects what Execute does.
	RunMeta *types.RunMeta
	// Store is the workspace the phases exchange data through.
	Store *store.Store
	// Capturer is required for capture runs.
	Capturer Capturer
	// Generator is required for generation runs.
	Generator Generator
	// Model is recorded on generation run records.
	Model string
	// Archive is the optional run archive. If nil, nothing is archived.
	Archive lode.Archive
	// ArchivePath is the archive location reported in notifications.
	ArchivePath string
	// Adapter is the optional completion notifier.
	Adapter adapter.Adapter
	// Collector is the metrics collector for this run.
	// If nil, no metrics are recorded (all Collector methods are nil-safe).
	Collector *metrics.Collector
	// Logger overrides the run logger. If nil, log.NewLogger is used.
	Logger *log.Logger
	// PostRunTimeout bounds archive and notify (default 30s).
	PostRunTimeout time.Duration
	// Now overrides the clock (for testing).
	Now func() time.Time
}

// RunResult represents the result of a run.
type RunResult struct {
	// RunMeta is the run identity.
	RunMeta *types.RunMeta
	// Outcome is the run outcome.
	Outcome *types.RunOutcome
	// StartedAt is when the phase started.
	StartedAt time.Time
	// Duration is the phase duration, excluding archive and notify.
	Duration time.Duration
	// Capture is set for capture runs that completed.
	Capture *capture.Report
	// CaptureErr is the error that aborted a capture run.
	CaptureErr error
	// Generation is set for generation runs.
	Generation *types.Result
	// ArchivedFiles lists files written to the archive.
	ArchivedFiles []string
	// Notified reports whether the completion notification was delivered.
	Notified bool
}

// RunOrchestrator orchestrates a single run.
type RunOrchestrator struct {
	config *RunConfig
	logger *log.Logger
	now    func() time.Time
}

// NewRunOrchestrator creates a new run orchestrator.
// Returns error if run metadata is invalid or the phase has no executor.
func NewRunOrchestrator(config *RunConfig) (*RunOrchestrator, error) {
	if config.RunMeta == nil {
		return nil, errors.New("invalid run metadata: missing")
	}
	if err := config.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	if config.Store == nil {
		return nil, errors.New("run requires a store")
	}
	switch config.RunMeta.Phase {
	case types.PhaseCapture:
		if config.Capturer == nil {
			return nil, errors.New("capture run requires a capturer")
		}
		if config.RunMeta.TargetURL == "" {
			return nil, errors.New("capture run requires a target URL")
		}
	case types.PhaseGenerate:
		if config.Generator == nil {
			return nil, errors.New("generation run requires a generator")
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger(config.RunMeta)
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	if config.PostRunTimeout <= 0 {
		config.PostRunTimeout = DefaultPostRunTimeout
	}

	return &RunOrchestrator{
		config: config,
		logger: logger,
		now:    now,
	}, nil
}

// Execute executes the run end-to-end.
//
// Execution flow:
//  1. Run the phase (capture or generate)
//  2. Determine outcome
//  3. Archive files and the run record (best effort)
//  4. Publish the completion notification (best effort)
//
// Phase failures are reported through RunResult.Outcome, never as an error.
func (r *RunOrchestrator) Execute(ctx context.Context) *RunResult {
	meta := r.config.RunMeta
	result := &RunResult{RunMeta: meta, StartedAt: r.now()}
	r.config.Collector.IncRunStarted()

	r.logger.Info("starting run", map[string]any{
		"workdir": r.config.Store.Root(),
	})

	switch meta.Phase {
	case types.PhaseCapture:
		r.runCapture(ctx, result)
	default:
		r.runGenerate(ctx, result)
	}
	result.Duration = r.now().Sub(result.StartedAt)

	if result.Outcome.Status == types.OutcomeSuccess {
		r.config.Collector.IncRunCompleted()
	} else {
		r.config.Collector.IncRunFailed()
	}

	// Post-run work must survive a canceled run context.
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.PostRunTimeout)
	defer cancel()
	r.archive(postCtx, result)
	r.notify(postCtx, result)

	r.logger.Info("run completed", map[string]any{
		"outcome":     string(result.Outcome.Status),
		"message":     result.Outcome.Message,
		"duration_ms": result.Duration.Milliseconds(),
	})
	return result
}

func (r *RunOrchestrator) runCapture(ctx context.Context, result *RunResult) {
	report, err := r.config.Capturer.Acquire(ctx, r.config.RunMeta.TargetURL)
	result.Outcome = captureOutcome(report, err)
	if err != nil {
		result.CaptureErr = err
		fields := map[string]any{"error": err.Error()}
		if name, ok := capture.IsCapabilityError(err); ok {
			r.config.Collector.IncCapabilityError()
			fields["capability"] = name
		}
		r.logger.Error("capture failed", fields)
		return
	}

	result.Capture = report
	r.config.Collector.IncDocumentSource(string(report.DocumentSource))
	r.config.Collector.IncImageSource(string(report.ImageSource))
	r.config.Collector.AddCaptureWarnings(len(report.Warnings))
	for _, w := range report.Warnings {
		r.logger.Warn("capture degraded", map[string]any{
			"kind":    string(w.Kind),
			"message": w.Message,
		})
	}
}

func (r *RunOrchestrator) runGenerate(ctx context.Context, result *RunResult) {
	res := r.config.Generator.Generate(ctx, r.config.Store.ImagePath())
	result.Generation = res
	result.Outcome = generationOutcome(res)
	if res.OK() {
		r.config.Collector.IncGenerationSuccess()
		return
	}
	r.config.Collector.IncGenerationFailure(string(res.Err.Kind))
	r.logger.Error("generation failed", map[string]any{
		"kind":    string(res.Err.Kind),
		"message": res.Err.Message,
		"trail":   res.Trail,
	})
}

// archivedFile is a workspace file copied into the archive.
type archivedFile struct {
	path        string
	contentType string
}

// filesToArchive lists the workspace files a run produced.
func (r *RunOrchestrator) filesToArchive(result *RunResult) []archivedFile {
	st := r.config.Store
	switch {
	case result.Capture != nil:
		return []archivedFile{
			{st.DocumentPath(), "application/json"},
			{st.ImagePath(), "image/png"},
		}
	case result.Generation != nil && result.Generation.OK():
		return []archivedFile{
			{st.DocumentPath(), "application/json"},
			{result.Generation.ArtifactPath, "text/jsx"},
		}
	}
	return nil
}

// archive copies the run's files and appends its run record.
// Failures are logged and counted, never propagated.
func (r *RunOrchestrator) archive(ctx context.Context, result *RunResult) {
	if r.config.Archive == nil {
		return
	}

	for _, f := range r.filesToArchive(result) {
		data, err := os.ReadFile(f.path)
		if err != nil {
			r.logger.Warn("archive: read file failed (best effort)", map[string]any{
				"path":  f.path,
				"error": err.Error(),
			})
			continue
		}
		name := filepath.Base(f.path)
		if err := r.config.Archive.PutFile(ctx, name, f.contentType, data); err != nil {
			r.logger.Warn("archive: put file failed (best effort)", map[string]any{
				"file":  name,
				"kind":  lode.ErrorLabel(err),
				"error": err.Error(),
			})
			continue
		}
		result.ArchivedFiles = append(result.ArchivedFiles, name)
	}

	if err := r.config.Archive.WriteRun(ctx, r.runRecord(result)); err != nil {
		r.logger.Warn("archive: write run record failed (best effort)", map[string]any{
			"kind":  lode.ErrorLabel(err),
			"error": err.Error(),
		})
	}
}

func (r *RunOrchestrator) runRecord(result *RunResult) lode.RunRecord {
	meta := result.RunMeta
	rec := lode.RunRecord{
		RunID:      meta.RunID,
		Phase:      string(meta.Phase),
		TargetURL:  meta.TargetURL,
		Outcome:    string(result.Outcome.Status),
		Message:    result.Outcome.Message,
		StartedAt:  result.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt: result.StartedAt.Add(result.Duration).UTC().Format(time.RFC3339Nano),
		DurationMS: result.Duration.Milliseconds(),
		Files:      result.ArchivedFiles,
	}
	if result.Outcome.ErrorKind != nil {
		rec.ErrorKind = string(*result.Outcome.ErrorKind)
	}
	if result.Capture != nil {
		rec.DocumentSource = string(result.Capture.DocumentSource)
		rec.ImageSource = string(result.Capture.ImageSource)
	}
	if result.Generation != nil {
		rec.Model = r.config.Model
		rec.Trail = result.Generation.Trail
	}
	return rec
}

// notify publishes the completion event. Failures are logged and counted.
func (r *RunOrchestrator) notify(ctx context.Context, result *RunResult) {
	if r.config.Adapter == nil {
		return
	}
	event := r.buildEvent(result)
	if err := r.config.Adapter.Publish(ctx, event); err != nil {
		r.config.Collector.IncNotifyFailure()
		r.logger.Warn("notification failed (best effort)", map[string]any{
			"event_type": event.EventType,
			"error":      err.Error(),
		})
		return
	}
	r.config.Collector.IncNotifySuccess()
	result.Notified = true
}

func (r *RunOrchestrator) buildEvent(result *RunResult) *adapter.PhaseCompletedEvent {
	meta := result.RunMeta
	event := &adapter.PhaseCompletedEvent{
		EventType:  adapter.EventGenerationCompleted,
		Version:    types.ReportVersion,
		RunID:      meta.RunID,
		Phase:      string(meta.Phase),
		TargetURL:  meta.TargetURL,
		Outcome:    string(result.Outcome.Status),
		Message:    result.Outcome.Message,
		Timestamp:  r.now().UTC().Format(time.RFC3339),
		DurationMs: result.Duration.Milliseconds(),
	}
	if len(result.ArchivedFiles) > 0 {
		event.ArchivePath = r.config.ArchivePath
	}
	if result.Outcome.ErrorKind != nil {
		event.ErrorKind = string(*result.Outcome.ErrorKind)
	}
	if meta.Phase == types.PhaseCapture {
		event.EventType = adapter.EventCaptureCompleted
	}
	if c := result.Capture; c != nil {
		event.DocumentPath = c.DocumentPath
		event.ImagePath = c.ImagePath
		event.DocumentSource = string(c.DocumentSource)
		event.ImageSource = string(c.ImageSource)
	}
	if g := result.Generation; g != nil && g.OK() {
		event.ArtifactPath = g.ArtifactPath
	}
	return event
}
