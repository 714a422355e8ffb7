package lode

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/justapithecus/lode/lode"
)

// ErrNoRunsFound is returned when no run records match a query.
var ErrNoRunsFound = errors.New("no run records found")

// NewReadDataset creates a Lode Dataset for reading.
// Uses the same codec and layout as the write path to ensure compatibility.
func NewReadDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	ds, err := newDataset(dataset, factory)
	if err != nil {
		return nil, WrapInitError(err, dataset)
	}
	return ds, nil
}

// NewReadDatasetFS creates a read Dataset with filesystem storage.
func NewReadDatasetFS(dataset, rootPath string) (lode.Dataset, error) {
	return NewReadDataset(dataset, lode.NewFSFactory(rootPath))
}

// NewReadDatasetS3 creates a read Dataset with S3 storage.
func NewReadDatasetS3(ctx context.Context, dataset string, s3cfg S3Config) (lode.Dataset, error) {
	factory, err := NewS3Factory(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	return NewReadDataset(dataset, factory)
}

// RunFilter narrows QueryRuns. Empty fields match everything.
type RunFilter struct {
	RunID  string
	Source string
	Phase  string
	Limit  int
}

// QueryRuns returns run records newest first.
// Manifest paths are a coarse pre-filter; record fields are authoritative.
func QueryRuns(ctx context.Context, ds lode.Dataset, filter RunFilter) ([]RunRecord, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, "snapclone/snapshots")
	}

	var out []RunRecord
	// Iterate in reverse (latest first); snapshots are ordered by creation time.
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotMatchesFilter(snap, "run_id", filter.RunID) ||
			!snapshotMatchesFilter(snap, "source", filter.Source) ||
			!snapshotMatchesFilter(snap, "phase", filter.Phase) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("snapclone/snapshot/%s", snap.ID))
		}
		for _, item := range data {
			m, ok := item.(map[string]any)
			if !ok || m["record_kind"] != RecordKindRun {
				continue
			}
			if filter.RunID != "" && toString(m["run_id"]) != filter.RunID {
				continue
			}
			if filter.Source != "" && toString(m["source"]) != filter.Source {
				continue
			}
			if filter.Phase != "" && toString(m["phase"]) != filter.Phase {
				continue
			}
			out = append(out, fromRunRecordMap(m))
		}
	}

	if len(out) == 0 {
		return nil, ErrNoRunsFound
	}
	// Snapshot order is creation order; a stable sort on finish time keeps
	// that order for records finishing in the same instant.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinishedAt > out[j].FinishedAt
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// snapshotMatchesFilter checks if a snapshot's file paths match
// the given partition key=value filter.
func snapshotMatchesFilter(snap *lode.DatasetSnapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue checks if a Hive-partitioned path contains an exact
// key=value segment. This avoids substring false positives (e.g.,
// run_id=run-1 matching run_id=run-10).
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
