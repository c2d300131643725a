package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#f56a96")
	mutedColor  = lipgloss.AdaptiveColor{Light: "#626262", Dark: "#A49FA5"}

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#15202b")).
			Background(accentColor).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Padding(0, 1)

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#f56a96", Dark: "#f23a74"}).
				Render

	completeMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#56FF4E")).
				Render

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(12)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#15202b")).
			Background(accentColor).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Padding(0, 2)

	alertStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 3).
			Align(lipgloss.Center)
)
var docStyle = lipgloss.NewStyle().Margin(1, 2)
