package tui

import "github.com/charmbracelet/lipgloss"

// Theme groups the dashboard styles.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style
	Toast    lipgloss.Style
}

const (
	colorAccent = lipgloss.Color("36")
	colorNotice = lipgloss.Color("214")
)

func DefaultTheme() Theme {
	faint := lipgloss.NewStyle().Faint(true)
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Subtitle: faint,
		Help:     faint,
		Card: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent),
		Toast: lipgloss.NewStyle().Foreground(colorNotice),
	}
}
