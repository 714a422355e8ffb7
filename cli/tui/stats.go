package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/snapclone/cli/reader"
)

// StatsModel is a Bubble Tea model for stats views.
type StatsModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(viewType string, data any) StatsModel {
	return StatsModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewStatsRuns:
		content = m.renderStatsRuns()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m StatsModel) renderStatsRuns() string {
	data, ok := m.data.(*reader.RunStats)
	if !ok {
		return "Invalid data type for stats_runs"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run Statistics"))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Total", data.Total, accentColor),
		m.renderStatBox("Succeeded", data.Succeeded, okColor),
		m.renderStatBox("Failed", data.Failed, failColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	writeRow(&b, "Avg Duration", ValueStyle.Render(fmt.Sprintf("%dms", data.AvgDurationMS)))
	if data.LastRunID != "" {
		writeRow(&b, "Last Run", ValueStyle.Render(data.LastRunID))
	}

	sections := []struct {
		title  string
		counts map[string]int
		style  func(string) lipgloss.Style
	}{
		{"By Phase", data.ByPhase, func(string) lipgloss.Style { return ValueStyle }},
		{"Errors", data.ByErrorKind, func(string) lipgloss.Style { return ErrorStyle }},
		{"Documents", data.Documents, SourceStyle},
		{"Images", data.Images, SourceStyle},
	}
	for _, s := range sections {
		if len(s.counts) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render(s.title))
		b.WriteString("\n")
		for _, c := range sortedCounts(s.counts) {
			writeRow(&b, c.name, s.style(c.name).Render(fmt.Sprintf("%d", c.count)))
		}
	}

	return b.String()
}

func (m StatsModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

type namedCount struct {
	name  string
	count int
}

// sortedCounts orders counts by descending count, then name.
func sortedCounts(m map[string]int) []namedCount {
	out := make([]namedCount, 0, len(m))
	for k, v := range m {
		out = append(out, namedCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

// RenderStatsStatic renders stats data without the full TUI.
func RenderStatsStatic(viewType string, data any) string {
	model := NewStatsModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
