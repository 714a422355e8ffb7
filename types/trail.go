//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"
	"strings"
)

// Trail is an append-only list of diagnostic checkpoints. It travels
// with the result of a run, success or failure, so a caller can replay
// what happened without access to the logs.
//
// A nil *Trail is valid and records nothing.
type Trail struct {
	entries []string
}

// NewTrail creates an empty trail.
func NewTrail() *Trail {
	return &Trail{}
}

// Addf appends a formatted checkpoint.
func (t *Trail) Addf(format string, args ...any) {
	if t == nil {
		return
	}
	t.entries = append(t.entries, fmt.Sprintf(format, args...))
}

// Len returns the number of checkpoints.
func (t *Trail) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the checkpoints in append order.
// Later appends never affect a returned slice.
func (t *Trail) Entries() []string {
	if t == nil {
		return []string{}
	}
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// String joins the checkpoints the way the CLI prints them.
func (t *Trail) String() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.entries, ", ")
}
