package capture

import (
	"errors"
	"fmt"
)

// CapabilityError reports a failure inside a live capture capability.
// These abort the capture run; fallbacks cover only absent capabilities.
type CapabilityError struct {
	// Capability is the failing capability name (e.g. capture_ui_tree).
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// IsCapabilityError reports whether err came from a tree or screenshot
// capability, and returns the capability name.
func IsCapabilityError(err error) (string, bool) {
	var capErr *CapabilityError
	if errors.As(err, &capErr) {
		return capErr.Capability, true
	}
	return "", false
}

// ErrNoExecutable is returned by ExecLauncher when no browser binary is
// configured or discoverable.
var ErrNoExecutable = errors.New("no browser executable configured")
