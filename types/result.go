//nolint:revive // types is a common Go package naming convention
package types

import "fmt"

// ErrorKind classifies a failed generation run.
type ErrorKind string

// Generation error kinds.
const (
	// ErrMissingDocument: the snapshot document does not exist.
	ErrMissingDocument ErrorKind = "missing_document"
	// ErrMissingImage: the screenshot does not exist or cannot be read.
	ErrMissingImage ErrorKind = "missing_image"
	// ErrDecode: the snapshot document is malformed.
	ErrDecode ErrorKind = "decode_error"
	// ErrUnexpectedFormat: a 200 response without usable choices.
	ErrUnexpectedFormat ErrorKind = "unexpected_format"
	// ErrRequestFailed: the endpoint answered with a non-200 status.
	ErrRequestFailed ErrorKind = "request_failed"
	// ErrTransport: the request never produced a response.
	ErrTransport ErrorKind = "transport_error"
	// ErrWriteFailed: the artifact could not be persisted.
	ErrWriteFailed ErrorKind = "write_failed"
)

// GenerationError is the typed failure half of a Result.
type GenerationError struct {
	// Kind is the failure classification.
	Kind ErrorKind `json:"kind"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// Status is the HTTP status for ErrRequestFailed, zero otherwise.
	Status int `json:"status,omitempty"`
	// BodyExcerpt is a truncated response body (at most 200 characters)
	// for ErrRequestFailed and ErrUnexpectedFormat.
	BodyExcerpt string `json:"body_excerpt,omitempty"`
}

func (e *GenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result is the outcome of a generation run. Exactly one of Artifact
// (with Err == nil) or Err is meaningful. Trail is populated either way.
type Result struct {
	// Artifact is the generated source text.
	Artifact string `json:"-"`
	// ArtifactPath is where the artifact was saved.
	ArtifactPath string `json:"artifact_path,omitempty"`
	// Message is the success message.
	Message string `json:"message,omitempty"`
	// Err is the typed failure, nil on success.
	Err *GenerationError `json:"error,omitempty"`
	// Trail is the diagnostic trail accumulated during the run.
	Trail []string `json:"trail"`
}

// OK reports whether the run succeeded.
func (r *Result) OK() bool {
	return r != nil && r.Err == nil
}

// Fail builds a failed Result from the trail accumulated so far.
func Fail(trail *Trail, kind ErrorKind, message string) *Result {
	return &Result{
		Err:   &GenerationError{Kind: kind, Message: message},
		Trail: trail.Entries(),
	}
}
