// Package cmd provides CLI commands for the snapclone binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for select read-only commands (inspect, stats).
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (inspect, stats only)",
	}

	// ConfigFlag points at a snapclone.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to YAML config file (default: ./snapclone.yaml when present)",
	}

	// WorkdirFlag is the workspace root the phases exchange files through.
	WorkdirFlag = &cli.StringFlag{
		Name:  "workdir",
		Usage: "Workspace root holding ui_layout.json, static/ and generated_ui.jsx (default: .)",
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error messages
// instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// WorkspaceReadOnlyFlags adds the workspace and archive location flags to
// ReadOnlyFlags for commands that read snapshots or archived runs.
func WorkspaceReadOnlyFlags() []cli.Flag {
	return append(ReadOnlyFlags(),
		ConfigFlag,
		WorkdirFlag,
		&cli.StringFlag{Name: "archive-backend", Usage: "Run archive backend: fs or s3"},
		&cli.StringFlag{Name: "archive-path", Usage: "Run archive path (fs: directory, s3: bucket/prefix)"},
		&cli.StringFlag{Name: "archive-region", Usage: "AWS region for the s3 backend"},
		&cli.StringFlag{Name: "archive-endpoint", Usage: "Custom S3 endpoint (R2, MinIO)"},
		&cli.BoolFlag{Name: "archive-s3-path-style", Usage: "Force path-style S3 addressing"},
	)
}

// captureFlags configure the capture phase.
func captureFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "url", Usage: "Page to capture (default: " + DefaultTargetURL + ")"},
		&cli.DurationFlag{Name: "settle", Usage: "Wait after navigation before capturing (default: 5s)"},
		&cli.StringFlag{Name: "provider", Usage: "Capture provider: browser, desktop or none (default: browser)"},
		&cli.StringFlag{Name: "executable", Usage: "Browser binary for local launch and the manual-open fallback"},
		&cli.StringFlag{Name: "remote-url", Usage: "DevTools WebSocket URL of a running Chrome"},
		&cli.BoolFlag{Name: "headless", Usage: "Run the launched Chrome without a window", Value: true},
		&cli.BoolFlag{Name: "stealth", Usage: "Open pages through go-rod/stealth", Value: true},
		&cli.StringFlag{Name: "desktop-url", Usage: "Desktop automation server URL"},
	}
}

// generateFlags configure the generation phase.
func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "base-url", Usage: "OpenAI-compatible API root"},
		&cli.StringFlag{Name: "model", Usage: "Completion model"},
		&cli.IntFlag{Name: "max-tokens", Usage: "Completion token cap"},
		&cli.StringFlag{Name: "api-key-env", Usage: "Environment variable holding the API key (default: GROQ_API_KEY)"},
		&cli.StringFlag{Name: "env-file", Usage: "dotenv file loaded before resolving the API key", Value: ".env"},
		&cli.DurationFlag{Name: "timeout", Usage: "Generation request timeout (default: 120s)"},
		&cli.IntFlag{Name: "retries", Usage: "Extra attempts after a transport error"},
	}
}

// runFlags are shared by every executing command.
func runFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		WorkdirFlag,
		&cli.StringFlag{Name: "run-id", Usage: "Run ID (default: random UUID)"},
		&cli.StringFlag{Name: "report", Usage: `Write a JSON run report to this path ("-" for stderr)`},
		&cli.BoolFlag{Name: "quiet", Usage: "Suppress result output"},
		&cli.StringFlag{Name: "archive-backend", Usage: "Run archive backend: fs or s3"},
		&cli.StringFlag{Name: "archive-path", Usage: "Run archive path (fs: directory, s3: bucket/prefix); empty disables archiving"},
		&cli.StringFlag{Name: "archive-region", Usage: "AWS region for the s3 backend"},
		&cli.StringFlag{Name: "archive-endpoint", Usage: "Custom S3 endpoint (R2, MinIO)"},
		&cli.BoolFlag{Name: "archive-s3-path-style", Usage: "Force path-style S3 addressing"},
		&cli.StringFlag{Name: "adapter", Usage: "Completion notifier: webhook or redis"},
		&cli.StringFlag{Name: "adapter-url", Usage: "Webhook endpoint or redis:// URL"},
		&cli.StringFlag{Name: "adapter-channel", Usage: "Redis channel (default: snapclone:run_completed)"},
		&cli.StringSliceFlag{Name: "adapter-header", Usage: "Webhook header as Key=Value (repeatable)"},
		&cli.DurationFlag{Name: "adapter-timeout", Usage: "Per-notification timeout"},
		&cli.IntFlag{Name: "adapter-retries", Usage: "Notification retry attempts"},
	}
}
