package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// View types with an interactive rendering.
const (
	ViewInspectDocument = "inspect_document"
	ViewInspectElements = "inspect_elements"
	ViewInspectReport   = "inspect_report"
	ViewStatsRuns       = "stats_runs"
)

// Run starts the view for viewType in the alternate screen.
func Run(viewType string, data any) error {
	model, err := NewModel(viewType, data)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// NewModel returns the Bubble Tea model for viewType.
func NewModel(viewType string, data any) (tea.Model, error) {
	if !IsTUISupported(viewType) {
		return nil, fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
	switch {
	case viewType == ViewInspectElements:
		return NewElementsModel(data), nil
	case strings.HasPrefix(viewType, "inspect_"):
		return NewInspectModel(viewType, data), nil
	default:
		return NewStatsModel(viewType, data), nil
	}
}

// IsTUISupported reports whether viewType has an interactive rendering.
// Only read-only inspect and stats views do.
func IsTUISupported(viewType string) bool {
	for _, v := range SupportedTUIViews() {
		if v == viewType {
			return true
		}
	}
	return false
}

// SupportedTUIViews returns the view types that support TUI.
func SupportedTUIViews() []string {
	return []string{
		ViewInspectDocument,
		ViewInspectElements,
		ViewInspectReport,
		ViewStatsRuns,
	}
}
