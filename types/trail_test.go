package types //nolint:revive // types is a valid package name

import (
	"reflect"
	"testing"
)

func TestTrail_AppendOrder(t *testing.T) {
	tr := NewTrail()
	tr.Addf("Starting image processing for %s", "a.png")
	tr.Addf("Received response with status code %d", 200)

	want := []string{
		"Starting image processing for a.png",
		"Received response with status code 200",
	}
	if got := tr.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
}

func TestTrail_EntriesIsSnapshot(t *testing.T) {
	tr := NewTrail()
	tr.Addf("one")
	snap := tr.Entries()
	tr.Addf("two")

	if len(snap) != 1 {
		t.Fatalf("snapshot grew to %d entries after append", len(snap))
	}
	snap[0] = "mutated"
	if tr.Entries()[0] != "one" {
		t.Error("mutating a snapshot must not change the trail")
	}
}

func TestTrail_NilSafe(t *testing.T) {
	var tr *Trail
	tr.Addf("ignored")
	if tr.Len() != 0 {
		t.Errorf("nil trail Len() = %d, want 0", tr.Len())
	}
	if got := tr.Entries(); got == nil || len(got) != 0 {
		t.Errorf("nil trail Entries() = %v, want empty non-nil slice", got)
	}
}

func TestTrail_String(t *testing.T) {
	tr := NewTrail()
	tr.Addf("a")
	tr.Addf("b")
	if got := tr.String(); got != "a, b" {
		t.Errorf("String() = %q, want %q", got, "a, b")
	}
}

func TestResult_Fail(t *testing.T) {
	tr := NewTrail()
	tr.Addf("UI layout not found at ui_layout.json")

	res := Fail(tr, ErrMissingDocument, "ui_layout.json not found")
	if res.OK() {
		t.Fatal("Fail() result reports OK")
	}
	if res.Err.Kind != ErrMissingDocument {
		t.Errorf("Kind = %q, want %q", res.Err.Kind, ErrMissingDocument)
	}
	if len(res.Trail) != 1 {
		t.Errorf("Trail length = %d, want 1", len(res.Trail))
	}
}

func TestGenerationError_Error(t *testing.T) {
	withStatus := &GenerationError{Kind: ErrRequestFailed, Message: "upstream error", Status: 500}
	if got := withStatus.Error(); got != "request_failed: upstream error (status 500)" {
		t.Errorf("Error() = %q", got)
	}
	plain := &GenerationError{Kind: ErrDecode, Message: "bad json"}
	if got := plain.Error(); got != "decode_error: bad json" {
		t.Errorf("Error() = %q", got)
	}
}
