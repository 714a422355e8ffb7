package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/iox"
	"github.com/pithecene-io/snapclone/lode"
	"github.com/pithecene-io/snapclone/metrics"
	"github.com/pithecene-io/snapclone/types"
)

// RunReport is the structured JSON report written by --report.
type RunReport struct {
	Version    string              `json:"version"`
	RunID      string              `json:"run_id"`
	Phase      types.Phase         `json:"phase"`
	TargetURL  string              `json:"target_url,omitempty"`
	Outcome    types.OutcomeStatus `json:"outcome"`
	Message    string              `json:"message"`
	ErrorKind  string              `json:"error_kind,omitempty"`
	ExitCode   int                 `json:"exit_code"`
	StartedAt  string              `json:"started_at"`
	DurationMs int64               `json:"duration_ms"`

	Capture    *capture.Report   `json:"capture,omitempty"`
	Generation *ReportGeneration `json:"generation,omitempty"`
	Archive    *ReportArchive    `json:"archive,omitempty"`
	Metrics    *metrics.Snapshot `json:"metrics"`
}

// ReportGeneration holds the generation phase result in the report.
type ReportGeneration struct {
	ArtifactPath string                 `json:"artifact_path,omitempty"`
	Error        *types.GenerationError `json:"error,omitempty"`
	Trail        []string               `json:"trail"`
}

// ReportArchive holds archive details in the report.
type ReportArchive struct {
	Path     string   `json:"path,omitempty"`
	Files    []string `json:"files"`
	Notified bool     `json:"notified"`
}

// BuildRunReport composes a RunReport from a RunResult and metrics snapshot.
// archivePath is the run's archive location, empty when archiving is off.
func BuildRunReport(result *RunResult, snap metrics.Snapshot, archivePath string) *RunReport {
	report := &RunReport{
		Version:    types.ReportVersion,
		RunID:      result.RunMeta.RunID,
		Phase:      result.RunMeta.Phase,
		TargetURL:  result.RunMeta.TargetURL,
		Outcome:    result.Outcome.Status,
		Message:    result.Outcome.Message,
		ExitCode:   ExitCode(result.Outcome),
		StartedAt:  result.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DurationMs: result.Duration.Milliseconds(),
		Capture:    result.Capture,
		Metrics:    &snap,
	}
	if result.Outcome.ErrorKind != nil {
		report.ErrorKind = string(*result.Outcome.ErrorKind)
	}
	if g := result.Generation; g != nil {
		report.Generation = &ReportGeneration{
			ArtifactPath: g.ArtifactPath,
			Error:        g.Err,
			Trail:        g.Trail,
		}
	}
	if archivePath != "" || result.Notified {
		report.Archive = &ReportArchive{
			Path:     archivePath,
			Files:    result.ArchivedFiles,
			Notified: result.Notified,
		}
		if report.Archive.Files == nil {
			report.Archive.Files = []string{}
		}
	}
	return report
}

// WriteRunReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteRunReport(report *RunReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		if err := writeRunReportTo(report, os.Stderr); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	data, err := marshalReport(report)
	if err != nil {
		return err
	}
	if err := iox.AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// ReportFileName is the archived report's file name.
const ReportFileName = "run_report.json"

// ArchiveRunReport stores the report next to the run's archived files.
func ArchiveRunReport(ctx context.Context, archive lode.Archive, report *RunReport) error {
	data, err := marshalReport(report)
	if err != nil {
		return err
	}
	return archive.PutFile(ctx, ReportFileName, "application/json", data)
}

// writeRunReportTo writes report JSON to any writer.
func writeRunReportTo(report *RunReport, w io.Writer) error {
	data, err := marshalReport(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func marshalReport(report *RunReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}
