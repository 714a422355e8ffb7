package lode

import (
	"context"

	"github.com/pithecene-io/snapclone/metrics"
)

// InstrumentedArchive wraps an Archive and records write metrics.
// Each PutFile/WriteRun call increments archive_write_success or
// archive_write_failure on the metrics collector.
type InstrumentedArchive struct {
	inner     Archive
	collector *metrics.Collector
}

// NewInstrumentedArchive wraps an archive with metrics instrumentation.
func NewInstrumentedArchive(inner Archive, collector *metrics.Collector) *InstrumentedArchive {
	return &InstrumentedArchive{inner: inner, collector: collector}
}

// PutFile delegates to the inner archive and records success or failure.
func (a *InstrumentedArchive) PutFile(ctx context.Context, filename, contentType string, data []byte) error {
	return a.record(a.inner.PutFile(ctx, filename, contentType, data))
}

// WriteRun delegates to the inner archive and records success or failure.
func (a *InstrumentedArchive) WriteRun(ctx context.Context, rec RunRecord) error {
	return a.record(a.inner.WriteRun(ctx, rec))
}

// Close delegates to the inner archive.
func (a *InstrumentedArchive) Close() error {
	return a.inner.Close()
}

func (a *InstrumentedArchive) record(err error) error {
	if err != nil {
		a.collector.IncArchiveWriteFailure()
	} else {
		a.collector.IncArchiveWriteSuccess()
	}
	return err
}

// Verify InstrumentedArchive implements Archive.
var _ Archive = (*InstrumentedArchive)(nil)
