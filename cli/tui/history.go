package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/billingflatfile/delivery"
	"github.com/justapithecus/billingflatfile/journal"
)

const defaultTableHeight = 12

// HistoryModel is a Bubble Tea model for history views. It lists journal
// entries or delivery manifest records in a scrollable table.
type HistoryModel struct {
	viewType string
	data     any
	table    table.Model
	empty    bool
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a new history model.
func NewHistoryModel(viewType string, data any) HistoryModel {
	m := HistoryModel{
		viewType: viewType,
		data:     data,
	}

	var (
		columns []table.Column
		rows    []table.Row
	)
	switch viewType {
	case ViewHistoryBatches:
		columns, rows = batchTable(data)
	case ViewHistoryDeliveries:
		columns, rows = deliveryTable(data)
	}
	m.empty = len(rows) == 0

	st := table.DefaultStyles()
	st.Header = HeaderStyle
	st.Selected = SelectedStyle
	m.table = table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(defaultTableHeight, max(len(rows), 1))),
		table.WithStyles(st),
	)
	return m
}

func batchTable(data any) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Started", Width: 19},
		{Title: "Batch", Width: 8},
		{Title: "App", Width: 3},
		{Title: "Status", Width: 9},
		{Title: "Files", Width: 5},
		{Title: "Rows", Width: 8},
		{Title: "Run IDs", Width: 12},
	}
	entries, ok := data.([]journal.Entry)
	if !ok {
		return columns, nil
	}
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(e.BatchID),
			e.ApplicationID,
			e.Status,
			fmt.Sprintf("%d", len(e.Files)),
			fmt.Sprintf("%d", e.RowCount),
			runIDRange(e.RunIDs),
		})
	}
	return columns, rows
}

func deliveryTable(data any) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Delivered", Width: 20},
		{Title: "App", Width: 3},
		{Title: "Run", Width: 5},
		{Title: "Rows", Width: 8},
		{Title: "Input", Width: 24},
		{Title: "Key", Width: 36},
	}
	records, ok := data.([]delivery.ManifestRecord)
	if !ok {
		return columns, nil
	}
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.DeliveredAt,
			r.ApplicationID,
			r.RunID,
			fmt.Sprintf("%d", r.RowCount),
			r.Input,
			r.MetadataKey,
		})
	}
	return columns, rows
}

// shortID keeps the first segment of a batch id, enough to tell batches apart.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// runIDRange renders allocated ids as "first-last", or a single id.
func runIDRange(ids []int) string {
	switch len(ids) {
	case 0:
		return "-"
	case 1:
		return fmt.Sprintf("%d", ids[0])
	default:
		return fmt.Sprintf("%d-%d", ids[0], ids[len(ids)-1])
	}
}

// Init implements tea.Model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var title string
	switch m.viewType {
	case ViewHistoryBatches:
		title = "Batch History"
	case ViewHistoryDeliveries:
		title = "Delivery History"
	default:
		return fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	if m.empty {
		b.WriteString(WarningStyle.Render("(no entries)"))
	} else {
		b.WriteString(m.table.View())
		if detail := m.selectedDetail(); detail != "" {
			b.WriteString("\n\n")
			b.WriteString(detail)
		}
	}

	help := HelpStyle.Render("↑/↓ to scroll, q or Ctrl+C to quit")
	return BoxStyle.Render(b.String()) + "\n" + help
}

// selectedDetail describes the highlighted row beyond what fits the table.
func (m HistoryModel) selectedDetail() string {
	i := m.table.Cursor()
	switch data := m.data.(type) {
	case []journal.Entry:
		if i < 0 || i >= len(data) {
			return ""
		}
		e := data[i]
		line := fmt.Sprintf("%s %s", LabelStyle.Render("Status:"), StateStyle(e.Status).Render(e.Status))
		if e.Error != "" {
			line += "\n" + fmt.Sprintf("%s %s", LabelStyle.Render("Error:"), ErrorStyle.Render(e.Error))
		}
		return line
	case []delivery.ManifestRecord:
		if i < 0 || i >= len(data) {
			return ""
		}
		return fmt.Sprintf("%s %s", LabelStyle.Render("Detailed:"), ValueStyle.Render(data[i].DetailedKey))
	}
	return ""
}

// RunHistoryTUI runs the history TUI.
func RunHistoryTUI(viewType string, data any) error {
	model := NewHistoryModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderHistoryStatic renders history data without full TUI (for fallback).
func RenderHistoryStatic(viewType string, data any) string {
	model := NewHistoryModel(viewType, data)
	model.width = 100
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
