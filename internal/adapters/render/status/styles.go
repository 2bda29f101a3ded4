package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	plan       lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	limitKey   lipgloss.Style
	limitMeta  lipgloss.Style
	barBracket lipgloss.Style
	barEmpty   lipgloss.Style
	sevLow     lipgloss.Style
	sevMedium  lipgloss.Style
	sevHigh    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		plan:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		limitKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		limitMeta:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		sevLow:     lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		sevMedium:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		sevHigh:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

func (s styles) severity(sev string) lipgloss.Style {
	switch sev {
	case "high":
		return s.sevHigh
	case "medium":
		return s.sevMedium
	default:
		return s.sevLow
	}
}
