package reader

import (
	"context"

	"github.com/pithecene-io/snapclone/runtime"
)

// Reader abstracts read-only data access for CLI commands.
// All methods are read-only and must not mutate state.
type Reader interface {
	// Workspace
	InspectDocument() (*InspectDocumentResponse, error)
	ListElements() ([]ElementRow, error)

	// Run reports written by --report
	InspectReport(path string) (*runtime.RunReport, error)

	// Run archive
	ListRuns(ctx context.Context, opts ListRunsOptions) ([]ListRunItem, error)
	StatsRuns(ctx context.Context, opts ListRunsOptions) (*RunStats, error)
}
