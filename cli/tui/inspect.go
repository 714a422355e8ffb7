package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/snapclone/cli/reader"
	"github.com/pithecene-io/snapclone/runtime"
)

const timeLayout = "2006-01-02 15:04:05"

// InspectModel is a Bubble Tea model for inspect views.
type InspectModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewInspectDocument:
		content = m.renderInspectDocument()
	case ViewInspectReport:
		content = m.renderInspectReport()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectDocument() string {
	data, ok := m.data.(*reader.InspectDocumentResponse)
	if !ok {
		return "Invalid data type for inspect_document"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Snapshot"))
	b.WriteString("\n\n")

	source := "live"
	if data.Synthetic {
		source = "synthetic"
	}
	writeRow(&b, "Document", ValueStyle.Render(data.Path))
	writeRow(&b, "Source", SourceStyle(source).Render(source))
	writeRow(&b, "URL", ValueStyle.Render(data.URL))
	writeRow(&b, "Title", ValueStyle.Render(data.Title))
	writeRow(&b, "Captured", ValueStyle.Render(data.Timestamp))
	writeRow(&b, "Elements", ValueStyle.Render(fmt.Sprintf("%d", data.Elements)))
	for _, t := range sortedCounts(data.Types) {
		writeRow(&b, "  "+t.name, ValueStyle.Render(fmt.Sprintf("%d", t.count)))
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("Files"))
	b.WriteString("\n")
	image := describeFile(data.Image.FileInfo)
	if data.Image.Width > 0 {
		image += fmt.Sprintf(" %dx%d", data.Image.Width, data.Image.Height)
	}
	writeRow(&b, "Screenshot", image)
	writeRow(&b, "Artifact", describeFile(data.Artifact))

	return BoxStyle.Render(b.String())
}

func (m InspectModel) renderInspectReport() string {
	data, ok := m.data.(*runtime.RunReport)
	if !ok {
		return "Invalid data type for inspect_report"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run Report"))
	b.WriteString("\n\n")

	writeRow(&b, "Run ID", ValueStyle.Render(data.RunID))
	writeRow(&b, "Phase", ValueStyle.Render(string(data.Phase)))
	if data.TargetURL != "" {
		writeRow(&b, "Target", ValueStyle.Render(data.TargetURL))
	}
	writeRow(&b, "Outcome", OutcomeStyle(string(data.Outcome)).Render(string(data.Outcome)))
	if data.ErrorKind != "" {
		writeRow(&b, "Error Kind", ErrorStyle.Render(data.ErrorKind))
	}
	writeRow(&b, "Message", ValueStyle.Render(data.Message))
	writeRow(&b, "Exit Code", ValueStyle.Render(fmt.Sprintf("%d", data.ExitCode)))
	writeRow(&b, "Started At", ValueStyle.Render(data.StartedAt))
	writeRow(&b, "Duration", ValueStyle.Render(fmt.Sprintf("%dms", data.DurationMs)))

	if c := data.Capture; c != nil {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Capture"))
		b.WriteString("\n")
		writeRow(&b, "Level", ValueStyle.Render(string(c.Level)))
		writeRow(&b, "Document", SourceStyle(string(c.DocumentSource)).Render(string(c.DocumentSource)))
		writeRow(&b, "Image", SourceStyle(string(c.ImageSource)).Render(string(c.ImageSource)))
		writeRow(&b, "Elements", ValueStyle.Render(fmt.Sprintf("%d", c.Elements)))
		for _, w := range c.Warnings {
			b.WriteString(fmt.Sprintf("  %s %s\n", WarningStyle.Render(string(w.Kind)), w.Message))
		}
	}

	if g := data.Generation; g != nil {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Generation"))
		b.WriteString("\n")
		if g.ArtifactPath != "" {
			writeRow(&b, "Artifact", ValueStyle.Render(g.ArtifactPath))
		}
		if g.Error != nil {
			writeRow(&b, "Error", ErrorStyle.Render(g.Error.Message))
		}
		for _, step := range g.Trail {
			b.WriteString(fmt.Sprintf("  • %s\n", ValueStyle.Render(step)))
		}
	}

	if a := data.Archive; a != nil {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Archive"))
		b.WriteString("\n")
		if a.Path != "" {
			writeRow(&b, "Path", ValueStyle.Render(a.Path))
		}
		writeRow(&b, "Files", ValueStyle.Render(strings.Join(a.Files, ", ")))
		notified := "no"
		if a.Notified {
			notified = "yes"
		}
		writeRow(&b, "Notified", ValueStyle.Render(notified))
	}

	return BoxStyle.Render(b.String())
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(label+":"), value))
}

func describeFile(f reader.FileInfo) string {
	if !f.Exists {
		return ErrorStyle.Render("missing")
	}
	desc := fmt.Sprintf("%s (%d bytes", f.Path, f.Bytes)
	if f.ModifiedAt != nil {
		desc += ", " + f.ModifiedAt.Local().Format(timeLayout)
	}
	return ValueStyle.Render(desc + ")")
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RenderInspectStatic renders inspect data without the full TUI.
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
