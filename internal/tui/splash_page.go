package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SplashModel is shown while the stored session is checked and loaded
type SplashModel struct {
	spinner spinner.Model
	width   int
	height  int
}

// NewSplashModel creates a new splash page model
func NewSplashModel() SplashModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentColor)
	return SplashModel{spinner: s}
}

// Init starts the spinner
func (m SplashModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the splash page
func (m SplashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the splash page
func (m SplashModel) View() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render("Image Feed"),
		"",
		m.spinner.View()+" Loading...",
	)
	if m.width == 0 || m.height == 0 {
		return docStyle.Render(content)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
