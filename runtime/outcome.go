package runtime

import (
	"fmt"

	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/types"
)

// Process exit codes.
const (
	ExitCodeSuccess         = 0 // phase produced its output
	ExitCodeGenerationError = 1 // generation returned a typed error
	ExitCodeCaptureFailure  = 2 // capture aborted
	ExitCodeConfigError     = 3 // startup configuration error
)

// ExitCode maps an outcome to the process exit code.
func ExitCode(outcome *types.RunOutcome) int {
	if outcome == nil {
		return ExitCodeCaptureFailure
	}
	switch outcome.Status {
	case types.OutcomeSuccess:
		return ExitCodeSuccess
	case types.OutcomeGenerationError:
		return ExitCodeGenerationError
	default:
		return ExitCodeCaptureFailure
	}
}

// captureOutcome classifies the result of a capture phase.
func captureOutcome(report *capture.Report, err error) *types.RunOutcome {
	if err != nil {
		return &types.RunOutcome{
			Status:  types.OutcomeCaptureFailure,
			Message: fmt.Sprintf("capture failed: %v", err),
		}
	}

	msg := "snapshot captured"
	if report.Degraded() {
		msg = fmt.Sprintf("snapshot captured with fallbacks (document %s, image %s)",
			report.DocumentSource, report.ImageSource)
	}
	return &types.RunOutcome{
		Status:  types.OutcomeSuccess,
		Message: msg,
	}
}

// generationOutcome classifies the result of a generation phase.
func generationOutcome(result *types.Result) *types.RunOutcome {
	if result.OK() {
		return &types.RunOutcome{
			Status:  types.OutcomeSuccess,
			Message: result.Message,
		}
	}
	kind := result.Err.Kind
	return &types.RunOutcome{
		Status:    types.OutcomeGenerationError,
		Message:   result.Err.Error(),
		ErrorKind: &kind,
	}
}
