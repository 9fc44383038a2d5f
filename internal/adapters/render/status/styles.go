package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title       lipgloss.Style
	header      lipgloss.Style
	account     lipgloss.Style
	detail      lipgloss.Style
	warning     lipgloss.Style
	unavailable lipgloss.Style
	section     lipgloss.Style
	empty       lipgloss.Style
	sensorKey   lipgloss.Style
	sensorMeta  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:       lipgloss.NewStyle().Bold(true),
		header:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		unavailable: lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("203")),
		section:     lipgloss.NewStyle().MarginTop(1),
		empty:       lipgloss.NewStyle().Faint(true),
		sensorKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		sensorMeta:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
