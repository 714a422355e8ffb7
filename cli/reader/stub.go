package reader

import (
	"context"
	"time"

	"github.com/pithecene-io/snapclone/runtime"
	"github.com/pithecene-io/snapclone/types"
)

// StubReader returns fixed, shape-correct data for command tests.
type StubReader struct {
	// Err, when set, is returned by every method.
	Err error
}

// NewStubReader creates a new stub reader.
func NewStubReader() *StubReader {
	return &StubReader{}
}

// InspectDocument returns a stub document summary.
func (r *StubReader) InspectDocument() (*InspectDocumentResponse, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	mod := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	return &InspectDocumentResponse{
		Path:      "ui_layout.json",
		Timestamp: "2026-02-07T12:00:00Z",
		URL:       "https://dribbble.com/",
		Title:     "Stub Page",
		Elements:  2,
		Types:     map[string]int{"header": 1, "footer": 1},
		Image: ImageInfo{
			FileInfo: FileInfo{Path: "static/screenshots/sample_ui.png", Exists: true, Bytes: 4096, ModifiedAt: &mod},
			Width:    1280,
			Height:   800,
		},
		Artifact: FileInfo{Path: "generated_ui.jsx"},
	}, nil
}

// ListElements returns stub element rows.
func (r *StubReader) ListElements() ([]ElementRow, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return []ElementRow{
		{Index: 0, Type: "header", Text: "Popular designs", Width: 100, Height: 50},
		{Index: 1, Type: "footer", Text: "Footer", Y: 850, Width: 1000, Height: 100},
	}, nil
}

// InspectReport returns a stub run report for path.
func (r *StubReader) InspectReport(path string) (*runtime.RunReport, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return &runtime.RunReport{
		Version: types.ReportVersion,
		RunID:   "stub-run-001",
		Phase:   types.PhaseGenerate,
		Outcome: types.OutcomeSuccess,
		Message: "report " + path,
		Generation: &runtime.ReportGeneration{
			ArtifactPath: "generated_ui.jsx",
			Trail:        []string{"Starting image processing for static/screenshots/sample_ui.png"},
		},
	}, nil
}

// ListRuns returns stub run items.
func (r *StubReader) ListRuns(_ context.Context, opts ListRunsOptions) ([]ListRunItem, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	items := []ListRunItem{
		{RunID: "stub-run-002", Phase: "generate", Outcome: "success", StartedAt: "2026-02-07T12:01:00Z", DurationMS: 1800, Files: 2},
		{RunID: "stub-run-001", Phase: "capture", Outcome: "success", TargetURL: "https://dribbble.com/", StartedAt: "2026-02-07T12:00:00Z", DurationMS: 5200, Files: 2},
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items, nil
}

// StatsRuns returns stub run statistics.
func (r *StubReader) StatsRuns(context.Context, ListRunsOptions) (*RunStats, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return &RunStats{
		Total:         2,
		Succeeded:     2,
		ByPhase:       map[string]int{"capture": 1, "generate": 1},
		ByErrorKind:   map[string]int{},
		Documents:     map[string]int{"live": 1},
		Images:        map[string]int{"screenshot": 1},
		AvgDurationMS: 3500,
		LastRunID:     "stub-run-002",
	}, nil
}

// Verify StubReader implements Reader.
var _ Reader = (*StubReader)(nil)
