package lode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// Archive failure kinds. Match with errors.Is; a *StorageError matches
// its Kind.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrDiskFull         = errors.New("no space left on device")
	ErrTimeout          = errors.New("operation timed out")
	ErrThrottled        = errors.New("rate limited")
	// ErrAuth is missing or invalid credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrAccessDenied is valid credentials without permission on the bucket.
	ErrAccessDenied = errors.New("access denied")
	ErrNetwork      = errors.New("network error")
	ErrUnclassified = errors.New("storage error")
)

var kindLabels = map[error]string{
	ErrPermissionDenied: "permission_denied",
	ErrNotFound:         "not_found",
	ErrDiskFull:         "disk_full",
	ErrTimeout:          "timeout",
	ErrThrottled:        "throttled",
	ErrAuth:             "auth",
	ErrAccessDenied:     "access_denied",
	ErrNetwork:          "network",
	ErrUnclassified:     "unclassified",
}

// StorageError is an archive failure with its classified Kind. The cause
// stays reachable through errors.As.
type StorageError struct {
	Kind error
	Op   string // write, read or init
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	target := e.Op
	if e.Path != "" {
		target += " " + e.Path
	}
	return fmt.Sprintf("%s: %v: %v", target, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches the classified kind as well as the wrapped cause.
func (e *StorageError) Is(target error) bool {
	return e.Kind == target
}

// NewStorageError creates a classified storage error.
func NewStorageError(kind error, op, path string, err error) *StorageError {
	return &StorageError{Kind: kind, Op: op, Path: path, Err: err}
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewStorageError(classifyError(err), op, path, err)
}

// WrapWriteError classifies a failed write. Returns nil for a nil err.
func WrapWriteError(err error, path string) error { return wrap("write", path, err) }

// WrapReadError classifies a failed read. Returns nil for a nil err.
func WrapReadError(err error, path string) error { return wrap("read", path, err) }

// WrapInitError classifies a failed client or store initialization.
// Returns nil for a nil err.
func WrapInitError(err error, dataset string) error { return wrap("init", dataset, err) }

// ErrorLabel returns a short metrics/log label for an archive error:
// the label of its StorageError kind, or of its classification when the
// error was never wrapped. Returns "" for nil.
func ErrorLabel(err error) string {
	if err == nil {
		return ""
	}
	var se *StorageError
	if errors.As(err, &se) {
		if label, ok := kindLabels[se.Kind]; ok {
			return label
		}
	}
	return kindLabels[classifyError(err)]
}

// messageRules classify errors the SDKs only expose as text. Order
// matters: the first rule with a matching pattern wins.
var messageRules = []struct {
	kind     error
	patterns []string
}{
	{ErrPermissionDenied, []string{"permission denied", "eacces"}},
	{ErrNotFound, []string{"no such file", "does not exist", "not found", "enoent", "404", "nosuchkey"}},
	{ErrDiskFull, []string{"no space left", "disk full", "enospc", "quota exceeded"}},
	{ErrTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ErrThrottled, []string{"slowdown", "rate exceeded", "throttl", "429", "toomanyrequests"}},
	{ErrAuth, []string{"nocredentialproviders", "credentials", "invalidaccesskeyid", "signaturedoesnotmatch", "expiredtoken", "401", "unauthorized"}},
	{ErrAccessDenied, []string{"accessdenied", "access denied", "forbidden", "403"}},
	{ErrNetwork, []string{"connection refused", "no route to host", "network unreachable", "dns", "dial tcp"}},
}

// classifyError maps err to one of the kind sentinels. Typed causes are
// checked before message patterns.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, syscall.ENOSPC):
		return ErrDiskFull
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, p := range rule.patterns {
			if strings.Contains(msg, p) {
				return rule.kind
			}
		}
	}
	return ErrUnclassified
}
