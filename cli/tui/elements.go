package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/snapclone/cli/reader"
)

// chromeLines is the height taken by the title and help lines.
const chromeLines = 5

var elementColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "Type", Width: 12},
	{Title: "Text", Width: 28},
	{Title: "Children", Width: 8},
	{Title: "X", Width: 6},
	{Title: "Y", Width: 6},
	{Title: "W", Width: 6},
	{Title: "H", Width: 6},
}

// ElementsModel is a scrollable table of snapshot elements.
type ElementsModel struct {
	table    table.Model
	count    int
	invalid  bool
	quitting bool
}

// NewElementsModel creates a model over []reader.ElementRow.
func NewElementsModel(data any) ElementsModel {
	rows, ok := elementRows(data)
	t := table.New(
		table.WithColumns(elementColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 20)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(accentColor).Bold(true)
	styles.Selected = styles.Selected.Foreground(focusColor)
	t.SetStyles(styles)
	return ElementsModel{table: t, count: len(rows), invalid: !ok}
}

// Init implements tea.Model.
func (m ElementsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ElementsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if h := msg.Height - chromeLines; h > 1 {
			m.table.SetHeight(h)
		}
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ElementsModel) View() string {
	if m.quitting {
		return ""
	}
	if m.invalid {
		return "Invalid data type for inspect_elements"
	}
	title := TitleStyle.Render(fmt.Sprintf("Elements (%d)", m.count))
	help := HelpStyle.Render("↑/↓ to scroll, q or Ctrl+C to quit")
	return title + "\n" + m.table.View() + "\n" + help
}

// SelectedIndex returns the index of the highlighted element.
func (m ElementsModel) SelectedIndex() int {
	return m.table.Cursor()
}

func elementRows(data any) ([]table.Row, bool) {
	elems, ok := data.([]reader.ElementRow)
	if !ok {
		return nil, false
	}
	rows := make([]table.Row, 0, len(elems))
	for _, e := range elems {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", e.Index),
			e.Type,
			e.Text,
			fmt.Sprintf("%d", e.ChildCount),
			fmt.Sprintf("%g", e.X),
			fmt.Sprintf("%g", e.Y),
			fmt.Sprintf("%g", e.Width),
			fmt.Sprintf("%g", e.Height),
		})
	}
	return rows, true
}
