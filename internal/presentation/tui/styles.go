package tui

import "github.com/charmbracelet/lipgloss"

// Styles used by the terminal views.
type Styles struct {
	Title       lipgloss.Style
	Selected    lipgloss.Style
	Item        lipgloss.Style
	Description lipgloss.Style
	Help        lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee")).MarginBottom(1),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f172a")).Background(lipgloss.Color("#38bdf8")).Padding(0, 1),
		Item:        lipgloss.NewStyle().Padding(0, 1),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
		Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b")).MarginTop(1),
		Success:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80")),
		Warning:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#facc15")),
		Error:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f87171")),
	}
}
