package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pithecene-io/snapclone/adapter"
	"github.com/pithecene-io/snapclone/artifact"
	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/lode"
	"github.com/pithecene-io/snapclone/log"
	"github.com/pithecene-io/snapclone/metrics"
	"github.com/pithecene-io/snapclone/store"
	"github.com/pithecene-io/snapclone/types"
)

type noLauncher struct{}

func (noLauncher) Launch(string) error { return capture.ErrNoExecutable }

func noSleep(context.Context, time.Duration) error { return nil }

// newDegradedAcquirer builds an acquirer with no capabilities, so every
// step falls back.
func newDegradedAcquirer(st *store.Store) *capture.Acquirer {
	return capture.NewAcquirer(capture.Capabilities{}, st,
		capture.WithLauncher(noLauncher{}),
		capture.WithSleep(noSleep),
		capture.WithLogger(log.NewNopLogger()),
		capture.WithProgress(func(string) {}),
	)
}

type failingCapturer struct{ err error }

func (f failingCapturer) Acquire(context.Context, string) (*capture.Report, error) {
	return nil, f.err
}

// fakeGenerator writes a fixed artifact, or fails with kind.
type fakeGenerator struct {
	st   *store.Store
	kind types.ErrorKind
}

func (g *fakeGenerator) Generate(_ context.Context, imagePath string) *types.Result {
	trail := types.NewTrail()
	trail.Addf("Starting image processing for %s", imagePath)
	if g.kind != "" {
		return types.Fail(trail, g.kind, "failed")
	}
	path, err := artifact.NewWriter(g.st.ArtifactPath()).Write("<Header/>")
	if err != nil {
		return types.Fail(trail, types.ErrWriteFailed, err.Error())
	}
	trail.Addf("Saved generated component to %s", path)
	return &types.Result{Artifact: "<Header/>", ArtifactPath: path, Trail: trail.Entries()}
}

type recordingAdapter struct {
	mu     sync.Mutex
	events []*adapter.PhaseCompletedEvent
	err    error
	ctxErr error
}

func (a *recordingAdapter) Publish(ctx context.Context, event *adapter.PhaseCompletedEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ctxErr = ctx.Err()
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, event)
	return nil
}

func (a *recordingAdapter) Close() error { return nil }

func fixedClock() func() time.Time {
	t := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(250 * time.Millisecond)
		return t
	}
}

func newOrchestrator(t *testing.T, cfg *RunConfig) *RunOrchestrator {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = fixedClock()
	}
	r, err := NewRunOrchestrator(cfg)
	if err != nil {
		t.Fatalf("NewRunOrchestrator: %v", err)
	}
	return r
}

func TestNewRunOrchestrator_Validation(t *testing.T) {
	st := store.New(t.TempDir())
	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"nil meta", RunConfig{Store: st}},
		{"empty run id", RunConfig{RunMeta: &types.RunMeta{Phase: types.PhaseCapture}, Store: st}},
		{"no store", RunConfig{RunMeta: &types.RunMeta{RunID: "r", Phase: types.PhaseGenerate}, Generator: &fakeGenerator{}}},
		{"capture without capturer", RunConfig{
			RunMeta: &types.RunMeta{RunID: "r", Phase: types.PhaseCapture, TargetURL: "https://x"},
			Store:   st,
		}},
		{"capture without url", RunConfig{
			RunMeta:  &types.RunMeta{RunID: "r", Phase: types.PhaseCapture},
			Store:    st,
			Capturer: failingCapturer{},
		}},
		{"generate without generator", RunConfig{
			RunMeta: &types.RunMeta{RunID: "r", Phase: types.PhaseGenerate},
			Store:   st,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRunOrchestrator(&tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExecute_CaptureDegraded(t *testing.T) {
	st := store.New(t.TempDir())
	archive := lode.NewStubArchive()
	notifier := &recordingAdapter{}
	collector := metrics.NewCollector("none", "", "fs", "run-001")

	r := newOrchestrator(t, &RunConfig{
		RunMeta:     &types.RunMeta{RunID: "run-001", Phase: types.PhaseCapture, TargetURL: "https://dribbble.com/"},
		Store:       st,
		Capturer:    newDegradedAcquirer(st),
		Archive:     archive,
		ArchivePath: "datasets/snapclone/partitions/source=dribbble.com/day=2026-02-07/run_id=run-001/files/",
		Adapter:     notifier,
		Collector:   collector,
	})

	result := r.Execute(t.Context())

	if result.Outcome.Status != types.OutcomeSuccess {
		t.Fatalf("Outcome = %+v, want success", result.Outcome)
	}
	if ExitCode(result.Outcome) != ExitCodeSuccess {
		t.Errorf("ExitCode = %d, want 0", ExitCode(result.Outcome))
	}
	if result.Capture.DocumentSource != capture.DocumentSynthetic {
		t.Errorf("DocumentSource = %q, want synthetic", result.Capture.DocumentSource)
	}
	if result.Capture.ImageSource != capture.ImagePlaceholder {
		t.Errorf("ImageSource = %q, want placeholder", result.Capture.ImageSource)
	}
	if result.Duration != 250*time.Millisecond {
		t.Errorf("Duration = %v, want 250ms", result.Duration)
	}

	// Archive: document + screenshot, then one run record.
	if len(archive.Files) != 2 {
		t.Fatalf("archived %d files, want 2", len(archive.Files))
	}
	if archive.Files[0].Filename != store.DocumentName || archive.Files[1].Filename != store.ImageName {
		t.Errorf("archived files = %q, %q", archive.Files[0].Filename, archive.Files[1].Filename)
	}
	if archive.Files[1].ContentType != "image/png" {
		t.Errorf("image content type = %q", archive.Files[1].ContentType)
	}
	if len(archive.Runs) != 1 {
		t.Fatalf("wrote %d run records, want 1", len(archive.Runs))
	}
	rec := archive.Runs[0]
	if rec.Phase != "capture" || rec.DocumentSource != "synthetic" || rec.ImageSource != "placeholder" {
		t.Errorf("run record = %+v", rec)
	}
	if len(rec.Files) != 2 {
		t.Errorf("run record files = %v", rec.Files)
	}

	// Notification
	if len(notifier.events) != 1 {
		t.Fatalf("published %d events, want 1", len(notifier.events))
	}
	ev := notifier.events[0]
	if ev.EventType != adapter.EventCaptureCompleted {
		t.Errorf("EventType = %q", ev.EventType)
	}
	if ev.ArchivePath == "" || ev.ImageSource != "placeholder" {
		t.Errorf("event = %+v", ev)
	}
	if !result.Notified {
		t.Error("Notified = false, want true")
	}

	snap := collector.Snapshot()
	if snap.RunsCompleted != 1 || snap.DocumentsBySource["synthetic"] != 1 || snap.ImagesBySource["placeholder"] != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.CaptureWarnings != int64(len(result.Capture.Warnings)) || snap.CaptureWarnings == 0 {
		t.Errorf("CaptureWarnings = %d, report warnings = %d", snap.CaptureWarnings, len(result.Capture.Warnings))
	}
	if snap.NotifySuccess != 1 {
		t.Errorf("NotifySuccess = %d, want 1", snap.NotifySuccess)
	}
}

func TestExecute_CaptureCapabilityFailure(t *testing.T) {
	st := store.New(t.TempDir())
	archive := lode.NewStubArchive()
	collector := metrics.NewCollector("browser", "", "fs", "run-001")

	r := newOrchestrator(t, &RunConfig{
		RunMeta: &types.RunMeta{RunID: "run-001", Phase: types.PhaseCapture, TargetURL: "https://dribbble.com/"},
		Store:   st,
		Capturer: failingCapturer{err: &capture.CapabilityError{
			Capability: capture.CapCaptureUITree,
			Err:        errors.New("eval failed"),
		}},
		Archive:   archive,
		Collector: collector,
	})

	result := r.Execute(t.Context())

	if result.Outcome.Status != types.OutcomeCaptureFailure {
		t.Fatalf("Outcome = %+v, want capture_failure", result.Outcome)
	}
	if ExitCode(result.Outcome) != ExitCodeCaptureFailure {
		t.Errorf("ExitCode = %d, want 2", ExitCode(result.Outcome))
	}
	if result.Capture != nil {
		t.Error("Capture report should be nil on failure")
	}
	if len(archive.Files) != 0 {
		t.Errorf("archived %d files, want 0", len(archive.Files))
	}
	if len(archive.Runs) != 1 || archive.Runs[0].Outcome != string(types.OutcomeCaptureFailure) {
		t.Errorf("run records = %+v", archive.Runs)
	}

	snap := collector.Snapshot()
	if snap.CapabilityErrors != 1 || snap.RunsFailed != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestExecute_GenerateSuccess(t *testing.T) {
	st := store.New(t.TempDir())
	if err := st.WriteDocument(&types.Document{Elements: []types.Element{{Type: "header", Text: "Hi"}}}); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	archive := lode.NewStubArchive()
	notifier := &recordingAdapter{}

	r := newOrchestrator(t, &RunConfig{
		RunMeta:   &types.RunMeta{RunID: "run-002", Phase: types.PhaseGenerate},
		Store:     st,
		Generator: &fakeGenerator{st: st},
		Model:     "llama3-8b-8192",
		Archive:   archive,
		Adapter:   notifier,
	})

	result := r.Execute(t.Context())

	if !result.Generation.OK() {
		t.Fatalf("Generation = %+v, want ok", result.Generation.Err)
	}
	if len(archive.Files) != 2 || archive.Files[1].Filename != store.ArtifactName {
		t.Fatalf("archived files = %+v", archive.Files)
	}
	if string(archive.Files[1].Data) != "<Header/>" {
		t.Errorf("archived artifact = %q", archive.Files[1].Data)
	}
	rec := archive.Runs[0]
	if rec.Model != "llama3-8b-8192" || len(rec.Trail) != 2 {
		t.Errorf("run record = %+v", rec)
	}
	ev := notifier.events[0]
	if ev.EventType != adapter.EventGenerationCompleted || ev.ArtifactPath != st.ArtifactPath() {
		t.Errorf("event = %+v", ev)
	}
}

func TestExecute_GenerateErrorIsBestEffortArchived(t *testing.T) {
	st := store.New(t.TempDir())
	archive := lode.NewStubArchive()
	archive.RunErr = errors.New("disk full")
	notifier := &recordingAdapter{err: errors.New("connection refused")}
	collector := metrics.NewCollector("none", "m", "fs", "run-003")

	r := newOrchestrator(t, &RunConfig{
		RunMeta:   &types.RunMeta{RunID: "run-003", Phase: types.PhaseGenerate},
		Store:     st,
		Generator: &fakeGenerator{st: st, kind: types.ErrMissingDocument},
		Archive:   archive,
		Adapter:   notifier,
		Collector: collector,
	})

	result := r.Execute(t.Context())

	if result.Outcome.Status != types.OutcomeGenerationError {
		t.Fatalf("Outcome = %+v, want generation_error", result.Outcome)
	}
	if *result.Outcome.ErrorKind != types.ErrMissingDocument {
		t.Errorf("ErrorKind = %q", *result.Outcome.ErrorKind)
	}
	if ExitCode(result.Outcome) != ExitCodeGenerationError {
		t.Errorf("ExitCode = %d, want 1", ExitCode(result.Outcome))
	}
	if len(archive.Files) != 0 {
		t.Errorf("archived %d files for a failed generation", len(archive.Files))
	}
	if result.Notified {
		t.Error("Notified = true, want false")
	}

	snap := collector.Snapshot()
	if snap.GenerationFailByKind[string(types.ErrMissingDocument)] != 1 {
		t.Errorf("GenerationFailByKind = %v", snap.GenerationFailByKind)
	}
	if snap.NotifyFailure != 1 {
		t.Errorf("NotifyFailure = %d, want 1", snap.NotifyFailure)
	}
}

func TestExecute_NotifyAfterCancel(t *testing.T) {
	st := store.New(t.TempDir())
	notifier := &recordingAdapter{}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	r := newOrchestrator(t, &RunConfig{
		RunMeta:   &types.RunMeta{RunID: "run-004", Phase: types.PhaseGenerate},
		Store:     st,
		Generator: &fakeGenerator{st: st, kind: types.ErrTransport},
		Adapter:   notifier,
	})
	r.Execute(ctx)

	if notifier.ctxErr != nil {
		t.Errorf("notify ctx err = %v, want nil", notifier.ctxErr)
	}
	if len(notifier.events) != 1 {
		t.Errorf("published %d events, want 1", len(notifier.events))
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		outcome *types.RunOutcome
		want    int
	}{
		{&types.RunOutcome{Status: types.OutcomeSuccess}, 0},
		{&types.RunOutcome{Status: types.OutcomeGenerationError}, 1},
		{&types.RunOutcome{Status: types.OutcomeCaptureFailure}, 2},
		{nil, 2},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.outcome); got != tt.want {
			t.Errorf("ExitCode(%+v) = %d, want %d", tt.outcome, got, tt.want)
		}
	}
}
