package billboard

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	board    lipgloss.Style
	line     lipgloss.Style
	price    lipgloss.Style
	detail   lipgloss.Style
	link     lipgloss.Style
	account  lipgloss.Style
	warning  lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	rank     lipgloss.Style
	previous lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		board:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69")).Padding(0, 2),
		line:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		price:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		link:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
		account:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		rank:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		previous: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}
