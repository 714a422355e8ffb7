package runtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/iox"
	"github.com/pithecene-io/snapclone/lode"
	"github.com/pithecene-io/snapclone/metrics"
	"github.com/pithecene-io/snapclone/types"
)

func newCaptureRunResult() *RunResult {
	return &RunResult{
		RunMeta: &types.RunMeta{
			RunID:     "run-001",
			Phase:     types.PhaseCapture,
			TargetURL: "https://dribbble.com/",
		},
		Outcome: &types.RunOutcome{
			Status:  types.OutcomeSuccess,
			Message: "snapshot captured",
		},
		StartedAt: time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC),
		Duration:  5 * time.Second,
		Capture: &capture.Report{
			Level:          capture.LevelFull,
			DocumentSource: capture.DocumentLive,
			ImageSource:    capture.ImageScreenshot,
			DocumentPath:   "ui_layout.json",
			ImagePath:      "static/screenshots/sample_ui.png",
			ImageBytes:     2048,
			Elements:       7,
		},
		ArchivedFiles: []string{"ui_layout.json", "sample_ui.png"},
	}
}

func newGenerationRunResult() *RunResult {
	kind := types.ErrRequestFailed
	return &RunResult{
		RunMeta: &types.RunMeta{RunID: "run-002", Phase: types.PhaseGenerate},
		Outcome: &types.RunOutcome{
			Status:    types.OutcomeGenerationError,
			Message:   "request_failed: 500 - boom (status 500)",
			ErrorKind: &kind,
		},
		StartedAt: time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Generation: &types.Result{
			Err: &types.GenerationError{
				Kind:        types.ErrRequestFailed,
				Message:     "500 - boom",
				Status:      500,
				BodyExcerpt: "boom",
			},
			Trail: []string{"Starting image processing for x.png", "Error response: boom..."},
		},
	}
}

func newTestSnapshot() metrics.Snapshot {
	return metrics.Snapshot{
		RunsStarted:       1,
		RunsCompleted:     1,
		DocumentsBySource: map[string]int64{"live": 1},
		ImagesBySource:    map[string]int64{"screenshot": 1},
		Provider:          "browser",
		Model:             "llama3-8b-8192",
		StorageBackend:    "fs",
		RunID:             "run-001",
	}
}

func TestBuildRunReport_Capture(t *testing.T) {
	report := BuildRunReport(newCaptureRunResult(), newTestSnapshot(), "datasets/snapclone/x/files/")

	if report.RunID != "run-001" {
		t.Errorf("RunID = %q, want run-001", report.RunID)
	}
	if report.Phase != types.PhaseCapture {
		t.Errorf("Phase = %q, want capture", report.Phase)
	}
	if report.ExitCode != ExitCodeSuccess {
		t.Errorf("ExitCode = %d, want 0", report.ExitCode)
	}
	if report.DurationMs != 5000 {
		t.Errorf("DurationMs = %d, want 5000", report.DurationMs)
	}
	if report.StartedAt != "2026-02-07T12:00:00.000Z" {
		t.Errorf("StartedAt = %q", report.StartedAt)
	}
	if report.Capture == nil || report.Capture.Elements != 7 {
		t.Errorf("Capture = %+v, want 7 elements", report.Capture)
	}
	if report.Generation != nil {
		t.Error("Generation should be nil for capture runs")
	}
	if report.Archive == nil || len(report.Archive.Files) != 2 {
		t.Errorf("Archive = %+v, want 2 files", report.Archive)
	}
	if report.Version != types.ReportVersion {
		t.Errorf("Version = %q, want %q", report.Version, types.ReportVersion)
	}
}

func TestBuildRunReport_GenerationError(t *testing.T) {
	report := BuildRunReport(newGenerationRunResult(), newTestSnapshot(), "")

	if report.Outcome != types.OutcomeGenerationError {
		t.Errorf("Outcome = %q, want %q", report.Outcome, types.OutcomeGenerationError)
	}
	if report.ExitCode != ExitCodeGenerationError {
		t.Errorf("ExitCode = %d, want 1", report.ExitCode)
	}
	if report.ErrorKind != string(types.ErrRequestFailed) {
		t.Errorf("ErrorKind = %q", report.ErrorKind)
	}
	if report.Generation == nil || len(report.Generation.Trail) != 2 {
		t.Fatalf("Generation = %+v, want trail of 2", report.Generation)
	}
	if report.Generation.Error.Status != 500 {
		t.Errorf("Generation.Error.Status = %d, want 500", report.Generation.Error.Status)
	}
	if report.Archive != nil {
		t.Error("Archive should be omitted when archiving is off and nothing was notified")
	}
}

func TestRunReport_JSONKeys(t *testing.T) {
	report := BuildRunReport(newGenerationRunResult(), newTestSnapshot(), "")

	var buf bytes.Buffer
	if err := writeRunReportTo(report, &buf); err != nil {
		t.Fatalf("writeRunReportTo failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	for _, key := range []string{
		"version", "run_id", "phase", "outcome", "message", "error_kind",
		"exit_code", "started_at", "duration_ms", "generation", "metrics",
	} {
		if _, exists := raw[key]; !exists {
			t.Errorf("missing required key %q in report JSON", key)
		}
	}
	for _, key := range []string{"capture", "archive", "target_url"} {
		if _, exists := raw[key]; exists {
			t.Errorf("key %q should be omitted", key)
		}
	}

	gen := raw["generation"].(map[string]any)
	if _, ok := gen["trail"].([]any); !ok {
		t.Errorf("generation.trail is %T, want array", gen["trail"])
	}
}

func TestWriteRunReport_File(t *testing.T) {
	report := BuildRunReport(newCaptureRunResult(), newTestSnapshot(), "")
	path := filepath.Join(t.TempDir(), "reports", "report.json")

	if err := WriteRunReport(report, path); err != nil {
		t.Fatalf("WriteRunReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var decoded RunReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal report: %v", err)
	}
	if decoded.RunID != "run-001" {
		t.Errorf("decoded RunID = %q, want run-001", decoded.RunID)
	}
	if decoded.Capture.ImageSource != capture.ImageScreenshot {
		t.Errorf("decoded ImageSource = %q", decoded.Capture.ImageSource)
	}
}

func TestWriteRunReport_EmptyPath(t *testing.T) {
	if err := WriteRunReport(&RunReport{}, ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestWriteRunReport_Stderr(t *testing.T) {
	origStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stderr = w

	report := BuildRunReport(newCaptureRunResult(), newTestSnapshot(), "")
	writeErr := WriteRunReport(report, "-")

	// Restore stderr before any assertions
	iox.DiscardClose(w)
	os.Stderr = origStderr

	if writeErr != nil {
		t.Fatalf("WriteRunReport to stderr failed: %v", writeErr)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read from pipe: %v", err)
	}

	var decoded RunReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("stderr output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if decoded.RunID != "run-001" {
		t.Errorf("decoded RunID = %q, want run-001", decoded.RunID)
	}
}

func TestArchiveRunReport(t *testing.T) {
	archive := lode.NewStubArchive()
	report := BuildRunReport(newGenerationRunResult(), newTestSnapshot(), "/archive/files/")

	if err := ArchiveRunReport(t.Context(), archive, report); err != nil {
		t.Fatalf("ArchiveRunReport failed: %v", err)
	}
	if len(archive.Files) != 1 {
		t.Fatalf("archived %d files, want 1", len(archive.Files))
	}
	f := archive.Files[0]
	if f.Filename != ReportFileName || f.ContentType != "application/json" {
		t.Errorf("archived %q (%s)", f.Filename, f.ContentType)
	}

	var decoded RunReport
	if err := json.Unmarshal(f.Data, &decoded); err != nil {
		t.Fatalf("archived report is not valid JSON: %v", err)
	}
	if decoded.Archive == nil || decoded.Archive.Path != "/archive/files/" {
		t.Errorf("Archive = %+v, want path /archive/files/", decoded.Archive)
	}
}

func TestArchiveRunReport_PutError(t *testing.T) {
	archive := lode.NewStubArchive()
	archive.PutErr = errors.New("bucket unavailable")

	report := BuildRunReport(newCaptureRunResult(), newTestSnapshot(), "")
	if err := ArchiveRunReport(t.Context(), archive, report); err == nil {
		t.Fatal("expected error from failing archive")
	}
}
