package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png" // screenshot decoding
	"os"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/iox"
	snaplode "github.com/pithecene-io/snapclone/lode"
	"github.com/pithecene-io/snapclone/runtime"
	"github.com/pithecene-io/snapclone/store"
	"github.com/pithecene-io/snapclone/types"
)

// ErrNoArchive is returned by archive queries when no archive is configured.
var ErrNoArchive = errors.New("no run archive configured (set --archive-path or archive.path)")

// DatasetOpener opens the run archive dataset on demand.
type DatasetOpener func(ctx context.Context) (lode.Dataset, error)

// WorkspaceReader reads the snapshot workspace and, when configured, the
// run archive.
type WorkspaceReader struct {
	store       *store.Store
	openDataset DatasetOpener
}

// NewWorkspaceReader creates a reader over st. open may be nil, in which
// case archive queries return ErrNoArchive.
func NewWorkspaceReader(st *store.Store, open DatasetOpener) *WorkspaceReader {
	return &WorkspaceReader{store: st, openDataset: open}
}

// InspectDocument summarizes the stored snapshot document together with
// the screenshot and artifact files next to it.
func (r *WorkspaceReader) InspectDocument() (*InspectDocumentResponse, error) {
	doc, err := r.store.ReadDocument()
	if err != nil {
		return nil, err
	}

	typeCounts := make(map[string]int)
	for _, el := range doc.Elements {
		typeCounts[el.Type]++
	}

	return &InspectDocumentResponse{
		Path:      r.store.DocumentPath(),
		Timestamp: doc.Timestamp,
		URL:       doc.URL,
		Title:     doc.Title,
		Synthetic: doc.Title == capture.SyntheticTitle,
		Elements:  len(doc.Elements),
		Types:     typeCounts,
		Image:     imageInfo(r.store.ImagePath()),
		Artifact:  fileInfo(r.store.ArtifactPath()),
	}, nil
}

// ListElements flattens the stored document's elements in capture order.
func (r *WorkspaceReader) ListElements() ([]ElementRow, error) {
	doc, err := r.store.ReadDocument()
	if err != nil {
		return nil, err
	}
	rows := make([]ElementRow, 0, len(doc.Elements))
	for i, el := range doc.Elements {
		rows = append(rows, ElementRow{
			Index:      i,
			Type:       el.Type,
			Text:       el.Text,
			ChildCount: el.ChildCount,
			X:          el.Bounds.X,
			Y:          el.Bounds.Y,
			Width:      el.Bounds.Width,
			Height:     el.Bounds.Height,
		})
	}
	return rows, nil
}

// InspectReport reads a run report written by --report.
func (r *WorkspaceReader) InspectReport(path string) (*runtime.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report runtime.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	if report.RunID == "" {
		return nil, fmt.Errorf("decode report %s: missing run_id", path)
	}
	return &report, nil
}

// ListRuns returns archived run records, newest first.
func (r *WorkspaceReader) ListRuns(ctx context.Context, opts ListRunsOptions) ([]ListRunItem, error) {
	records, err := r.queryRuns(ctx, opts)
	if err != nil {
		return nil, err
	}
	items := make([]ListRunItem, 0, len(records))
	for _, rec := range records {
		items = append(items, ListRunItem{
			RunID:      rec.RunID,
			Phase:      rec.Phase,
			Outcome:    rec.Outcome,
			ErrorKind:  rec.ErrorKind,
			TargetURL:  rec.TargetURL,
			StartedAt:  rec.StartedAt,
			DurationMS: rec.DurationMS,
			Files:      len(rec.Files),
		})
	}
	return items, nil
}

// StatsRuns aggregates archived run records.
func (r *WorkspaceReader) StatsRuns(ctx context.Context, opts ListRunsOptions) (*RunStats, error) {
	records, err := r.queryRuns(ctx, opts)
	if err != nil {
		return nil, err
	}
	return aggregateRuns(records), nil
}

func (r *WorkspaceReader) queryRuns(ctx context.Context, opts ListRunsOptions) ([]snaplode.RunRecord, error) {
	if r.openDataset == nil {
		return nil, ErrNoArchive
	}
	ds, err := r.openDataset(ctx)
	if err != nil {
		return nil, err
	}
	records, err := snaplode.QueryRuns(ctx, ds, snaplode.RunFilter{
		RunID:  opts.RunID,
		Source: opts.Source,
		Phase:  opts.Phase,
		Limit:  opts.Limit,
	})
	if errors.Is(err, snaplode.ErrNoRunsFound) {
		return nil, nil
	}
	return records, err
}

// aggregateRuns computes RunStats from records ordered newest first.
func aggregateRuns(records []snaplode.RunRecord) *RunStats {
	stats := &RunStats{
		ByPhase:     map[string]int{},
		ByErrorKind: map[string]int{},
		Documents:   map[string]int{},
		Images:      map[string]int{},
	}
	var totalMS int64
	for _, rec := range records {
		stats.Total++
		totalMS += rec.DurationMS
		stats.ByPhase[rec.Phase]++
		if rec.Outcome == string(types.OutcomeSuccess) {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		if rec.ErrorKind != "" {
			stats.ByErrorKind[rec.ErrorKind]++
		}
		if rec.DocumentSource != "" {
			stats.Documents[rec.DocumentSource]++
		}
		if rec.ImageSource != "" {
			stats.Images[rec.ImageSource]++
		}
	}
	if stats.Total > 0 {
		stats.AvgDurationMS = totalMS / int64(stats.Total)
		stats.LastRunID = records[0].RunID
	}
	return stats
}

func fileInfo(path string) FileInfo {
	info := FileInfo{Path: path}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return info
	}
	mod := st.ModTime().UTC()
	info.Exists = true
	info.Bytes = st.Size()
	info.ModifiedAt = &mod
	return info
}

func imageInfo(path string) ImageInfo {
	info := ImageInfo{FileInfo: fileInfo(path)}
	if info.Bytes == 0 {
		return info
	}
	f, err := os.Open(path)
	if err != nil {
		return info
	}
	defer iox.DiscardClose(f)
	if cfg, _, err := image.DecodeConfig(f); err == nil {
		info.Width = cfg.Width
		info.Height = cfg.Height
	}
	return info
}

// Verify WorkspaceReader implements Reader.
var _ Reader = (*WorkspaceReader)(nil)
