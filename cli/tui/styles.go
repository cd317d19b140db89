// Package tui provides Bubble Tea views for the read-only billingflatfile
// commands.
//
// Views are opt-in (--tui), never write anything, and render the same
// payloads the json/table/yaml renderers receive.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#0E7490") // teal
	subtle    = lipgloss.Color("#6B7280")
	bright    = lipgloss.Color("#F9FAFB")
	okColor   = lipgloss.Color("#16A34A")
	badColor  = lipgloss.Color("#DC2626")
	warnColor = lipgloss.Color("#D97706")
)

// Shared styles. Labels are fixed width so metadata fields line up.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	LabelStyle = lipgloss.NewStyle().Foreground(subtle).Width(18)
	ValueStyle = lipgloss.NewStyle().Foreground(bright)
	MutedStyle = lipgloss.NewStyle().Foreground(subtle)
	HelpStyle  = lipgloss.NewStyle().Foreground(subtle).MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(okColor)
	WarningStyle = lipgloss.NewStyle().Foreground(warnColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(badColor).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(subtle).
			BorderBottom(true)

	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(bright).Background(accent)
)

// StateStyle colors a journal status or manifest record kind.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "completed", "delivered":
		return SuccessStyle
	case "failed":
		return ErrorStyle
	default:
		return ValueStyle
	}
}
