package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	proxy      lipgloss.Style
	detail     lipgloss.Style
	farming    lipgloss.Style
	activating lipgloss.Style
	stopped    lipgloss.Style
	warning    lipgloss.Style
	empty      lipgloss.Style
	section    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		proxy:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		farming:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		activating: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		stopped:    lipgloss.NewStyle().Faint(true),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:      lipgloss.NewStyle().Faint(true),
		section:    lipgloss.NewStyle().MarginTop(1),
	}
}
