package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/billingflatfile/record"
	"github.com/justapithecus/billingflatfile/runid"
	"github.com/justapithecus/billingflatfile/types"
)

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
	case ViewInspectMetadata:
		content = m.renderInspectMetadata()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectMetadata() string {
	data, ok := m.data.(*record.Metadata)
	if !ok {
		return "Invalid data type for inspect_metadata"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Metadata Record"))
	b.WriteString("\n\n")

	description := data.RunDescription
	if description == "" {
		description = "(none)"
	}
	billingType := data.BillingType
	if billingType == "" || billingType == " " {
		billingType = "(unset)"
	}

	rows := [][]string{
		{"Application", data.ApplicationID},
		{"Description", description},
		{"Run ID", runid.MetadataID(data.RunID)},
		{"Billing Type", billingType},
		{"Rows", fmt.Sprintf("%d", data.RowCount)},
		{"Oldest Date", formatDate(data.OldestDate)},
		{"Newest Date", formatDate(data.MostRecentDate)},
		{"File Version", data.FileVersion},
	}

	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		b.WriteString(fmt.Sprintf("%s %s\n", label, ValueStyle.Render(row[1])))
	}

	return BoxStyle.Render(b.String())
}

// formatDate renders a YYYYMMDD field as YYYY-MM-DD. The no-date sentinel
// and malformed values are shown muted as-is.
func formatDate(s string) string {
	if s == types.NoDate || len(s) != 8 {
		return MutedStyle.Render(s)
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
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

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
