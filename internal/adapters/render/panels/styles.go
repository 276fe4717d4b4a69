package panels

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title        lipgloss.Style
	header       lipgloss.Style
	label        lipgloss.Style
	detail       lipgloss.Style
	warning      lipgloss.Style
	danger       lipgloss.Style
	ok           lipgloss.Style
	pending      lipgloss.Style
	locked       lipgloss.Style
	cursor       lipgloss.Style
	section      lipgloss.Style
	empty        lipgloss.Style
	meta         lipgloss.Style
	barBracket   lipgloss.Style
	barFill      lipgloss.Style
	barEmpty     lipgloss.Style
	barLimit     lipgloss.Style
	errorBox     lipgloss.Style
	errorMessage lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:        lipgloss.NewStyle().Bold(true),
		header:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		danger:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		ok:           lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		pending:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("221")),
		locked:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		cursor:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		section:      lipgloss.NewStyle().MarginTop(1),
		empty:        lipgloss.NewStyle().Faint(true),
		meta:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barBracket:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:      lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		barLimit:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		errorBox:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("203")).Padding(0, 1),
		errorMessage: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}
