// Package tui provides Bubble Tea views for the snapclone CLI.
//
// Views are opt-in (--tui) and read-only. They render the same payloads as
// the json/table/yaml output and never load data of their own.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Degraded (fallback) data is amber so it stands out from live
// captures without reading as a failure.
var (
	accentColor   = lipgloss.Color("#0EA5E9")
	okColor       = lipgloss.Color("#22C55E")
	degradedColor = lipgloss.Color("#F59E0B")
	failColor     = lipgloss.Color("#EF4444")
	dimColor      = lipgloss.Color("#71717A")
	focusColor    = lipgloss.Color("#A78BFA")
	textColor     = lipgloss.Color("#FAFAFA")
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1)
	LabelStyle = lipgloss.NewStyle().Foreground(dimColor).Width(18)
	ValueStyle = lipgloss.NewStyle().Foreground(textColor)
	HelpStyle  = lipgloss.NewStyle().Foreground(dimColor).MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(okColor)
	WarningStyle = lipgloss.NewStyle().Foreground(degradedColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(failColor)

	// BoxStyle frames the inspector sections.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(dimColor).
			Padding(0, 1)

	// StatBoxStyle frames one headline number in the stats view.
	StatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Width(18).
			Align(lipgloss.Center)
	StatLabelStyle = lipgloss.NewStyle().Foreground(dimColor).Align(lipgloss.Center)
	StatValueStyle = lipgloss.NewStyle().Bold(true).Foreground(textColor).Align(lipgloss.Center)
)

// OutcomeStyle returns a style for a run outcome.
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "success":
		return SuccessStyle
	case "generation_error":
		return WarningStyle
	case "capture_failure":
		return ErrorStyle
	default:
		return ValueStyle
	}
}

// SourceStyle highlights fallback document and image sources.
func SourceStyle(source string) lipgloss.Style {
	switch source {
	case "live", "screenshot", "screen":
		return SuccessStyle
	case "synthetic", "placeholder", "empty":
		return WarningStyle
	default:
		return ValueStyle
	}
}
