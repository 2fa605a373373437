package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	questionerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	answererStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("150"))
	counterStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	resultStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("212"))
)
