package tui

import (
	"strings"

	"github.com/brizzai/image-feed/internal/models"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// profileKeyMap holds key bindings for the profile page
type profileKeyMap struct {
	logout key.Binding
}

func newProfileKeyMap() profileKeyMap {
	return profileKeyMap{
		logout: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Log out"),
		),
	}
}

// confirmLogoutMsg asks the app to show the logout confirmation
type confirmLogoutMsg struct {
	logout tea.Cmd
}

// ProfilePageModel shows the signed-in user
type ProfilePageModel struct {
	profile   models.Profile
	avatarURL string
	loaded    bool
	logout    tea.Cmd
	keys      profileKeyMap
	width     int
	height    int
}

// NewProfilePageModel creates an empty profile page
func NewProfilePageModel() ProfilePageModel {
	return ProfilePageModel{keys: newProfileKeyMap()}
}

// Init returns the initial command for the profile page.
func (m ProfilePageModel) Init() tea.Cmd {
	return nil
}

// SetProfile replaces the user shown
func (m ProfilePageModel) SetProfile(p models.Profile, avatarURL string) ProfilePageModel {
	m.profile = p
	m.avatarURL = avatarURL
	m.loaded = true
	return m
}

// SetLogout sets the command run once logout is confirmed
func (m ProfilePageModel) SetLogout(logout tea.Cmd) ProfilePageModel {
	m.logout = logout
	return m
}

// Resize applies a window size
func (m ProfilePageModel) Resize(width, height int) ProfilePageModel {
	m.width = width
	m.height = height
	return m
}

// Update handles messages for the profile page
func (m ProfilePageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.Resize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.logout) && m.logout != nil {
			logout := m.logout
			return m, func() tea.Msg { return confirmLogoutMsg{logout: logout} }
		}
	}
	return m, nil
}

// View renders the profile page
func (m ProfilePageModel) View() string {
	lines := []string{titleStyle.Render("Profile"), ""}

	if !m.loaded {
		lines = append(lines, helpStyle.Render("Profile unavailable"))
	} else {
		name := m.profile.Name
		if name == "" {
			name = m.profile.Username
		}
		lines = append(lines,
			headerStyle.Render(name),
			lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Login"), m.profile.LoginName),
		)
		if m.profile.Bio != "" {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Bio"), m.profile.Bio))
		}
		if m.avatarURL != "" {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Avatar"), m.avatarURL))
		}
	}

	lines = append(lines, "", helpStyle.Render("(x) Log out | (ctrl+c) Quit"))
	return docStyle.Render(strings.Join(lines, "\n"))
}
