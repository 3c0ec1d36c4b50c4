package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary     = lipgloss.Color("#101F38")
	colorAccent      = lipgloss.Color("#8BC34A")
	colorDestructive = lipgloss.Color("#e53935")
	colorWarning     = lipgloss.Color("#FFC107")
	colorMuted       = lipgloss.Color("#8a94a6")
)

type Styles struct {
	Header    lipgloss.Style
	Boycotted lipgloss.Style
	Clear     lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	Help      lipgloss.Style
}

func DefaultStyles() Styles {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f2f2f2")).
			Background(colorPrimary).
			Padding(0, 1),
		Boycotted: box.BorderForeground(colorDestructive),
		Clear:     box.BorderForeground(colorAccent),
		Error:     lipgloss.NewStyle().Foreground(colorDestructive),
		Notice:    lipgloss.NewStyle().Foreground(colorWarning),
		Help:      lipgloss.NewStyle().Foreground(colorMuted),
	}
}
