package reader

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/snapclone/capture"
	snaplode "github.com/pithecene-io/snapclone/lode"
	"github.com/pithecene-io/snapclone/runtime"
	"github.com/pithecene-io/snapclone/store"
	"github.com/pithecene-io/snapclone/types"
)

func newWorkspace(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(t.TempDir())
	doc := capture.SyntheticDocument("https://dribbble.com/", time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC))
	if err := st.WriteDocument(doc); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	return st
}

func TestInspectDocument(t *testing.T) {
	st := newWorkspace(t)
	png, err := capture.RenderPlaceholder()
	if err != nil {
		t.Fatalf("RenderPlaceholder: %v", err)
	}
	if _, err := st.WriteImage(png); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	resp, err := NewWorkspaceReader(st, nil).InspectDocument()
	if err != nil {
		t.Fatalf("InspectDocument: %v", err)
	}

	if !resp.Synthetic {
		t.Error("Synthetic = false, want true for the fallback document")
	}
	if resp.Elements != 3 || resp.Types["gallery"] != 1 {
		t.Errorf("Elements = %d, Types = %v", resp.Elements, resp.Types)
	}
	if resp.URL != "https://dribbble.com/" {
		t.Errorf("URL = %q", resp.URL)
	}
	if !resp.Image.Exists || resp.Image.Width != 1280 || resp.Image.Height != 800 {
		t.Errorf("Image = %+v, want 1280x800", resp.Image)
	}
	if resp.Artifact.Exists {
		t.Error("Artifact.Exists = true before any generation")
	}
}

func TestInspectDocument_EmptyImage(t *testing.T) {
	st := newWorkspace(t)
	if _, err := st.WriteImage(nil); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	resp, err := NewWorkspaceReader(st, nil).InspectDocument()
	if err != nil {
		t.Fatalf("InspectDocument: %v", err)
	}
	if !resp.Image.Exists || resp.Image.Bytes != 0 || resp.Image.Width != 0 {
		t.Errorf("Image = %+v, want existing empty file", resp.Image)
	}
}

func TestInspectDocument_Missing(t *testing.T) {
	_, err := NewWorkspaceReader(store.New(t.TempDir()), nil).InspectDocument()
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want store.ErrNotFound", err)
	}
}

func TestListElements(t *testing.T) {
	rows, err := NewWorkspaceReader(newWorkspace(t), nil).ListElements()
	if err != nil {
		t.Fatalf("ListElements: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1].Type != "gallery" || rows[1].ChildCount != 20 || rows[1].Y != 50 {
		t.Errorf("rows[1] = %+v", rows[1])
	}
	for i, row := range rows {
		if row.Index != i {
			t.Errorf("rows[%d].Index = %d", i, row.Index)
		}
	}
}

func TestInspectReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	data, _ := json.Marshal(&runtime.RunReport{RunID: "run-9", Phase: types.PhaseCapture, Outcome: types.OutcomeSuccess})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewWorkspaceReader(store.New(dir), nil)
	report, err := r.InspectReport(path)
	if err != nil {
		t.Fatalf("InspectReport: %v", err)
	}
	if report.RunID != "run-9" || report.Phase != types.PhaseCapture {
		t.Errorf("report = %+v", report)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"outcome":"success"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.InspectReport(bad); err == nil {
		t.Error("expected error for report without run_id")
	}
	if _, err := r.InspectReport(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing report")
	}
}

func TestRuns_NoArchive(t *testing.T) {
	r := NewWorkspaceReader(store.New(t.TempDir()), nil)
	if _, err := r.ListRuns(t.Context(), ListRunsOptions{}); !errors.Is(err, ErrNoArchive) {
		t.Errorf("ListRuns err = %v, want ErrNoArchive", err)
	}
	if _, err := r.StatsRuns(t.Context(), ListRunsOptions{}); !errors.Is(err, ErrNoArchive) {
		t.Errorf("StatsRuns err = %v, want ErrNoArchive", err)
	}
}

func TestRuns_FromArchive(t *testing.T) {
	mem := lode.NewMemory()
	factory := func() (lode.Store, error) { return mem, nil }

	start := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	write := func(runID string, rec snaplode.RunRecord) {
		t.Helper()
		client, err := snaplode.NewLodeClientWithFactory(snaplode.Config{
			Dataset: snaplode.DefaultDataset,
			Source:  "dribbble.com",
			Day:     snaplode.DeriveDay(start),
			RunID:   runID,
		}, factory)
		if err != nil {
			t.Fatal(err)
		}
		rec.RunID = runID
		if err := client.WriteRun(t.Context(), rec); err != nil {
			t.Fatalf("WriteRun: %v", err)
		}
	}
	write("run-1", snaplode.RunRecord{Phase: "capture", Outcome: "success", DocumentSource: "live", ImageSource: "screenshot",
		StartedAt: start.Format(time.RFC3339), FinishedAt: start.Add(4 * time.Second).Format(time.RFC3339), DurationMS: 4000,
		Files: []string{"ui_layout.json", "sample_ui.png"}})
	write("run-2", snaplode.RunRecord{Phase: "generate", Outcome: "generation_error", ErrorKind: "request_failed",
		StartedAt: start.Add(time.Minute).Format(time.RFC3339), FinishedAt: start.Add(time.Minute + 2*time.Second).Format(time.RFC3339), DurationMS: 2000})

	open := func(context.Context) (lode.Dataset, error) {
		return snaplode.NewReadDataset(snaplode.DefaultDataset, factory)
	}
	r := NewWorkspaceReader(store.New(t.TempDir()), open)

	items, err := r.ListRuns(t.Context(), ListRunsOptions{})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(items) != 2 || items[0].RunID != "run-2" {
		t.Fatalf("items = %+v, want run-2 first", items)
	}
	if items[1].Files != 2 {
		t.Errorf("items[1].Files = %d, want 2", items[1].Files)
	}

	stats, err := r.StatsRuns(t.Context(), ListRunsOptions{})
	if err != nil {
		t.Fatalf("StatsRuns: %v", err)
	}
	if stats.Total != 2 || stats.Succeeded != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByErrorKind["request_failed"] != 1 || stats.Documents["live"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgDurationMS != 3000 || stats.LastRunID != "run-2" {
		t.Errorf("AvgDurationMS = %d, LastRunID = %q", stats.AvgDurationMS, stats.LastRunID)
	}

	none, err := r.ListRuns(t.Context(), ListRunsOptions{RunID: "run-404"})
	if err != nil || len(none) != 0 {
		t.Errorf("ListRuns(run-404) = %v, %v; want empty", none, err)
	}
}
