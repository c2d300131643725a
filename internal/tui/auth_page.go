package tui

import (
	"strings"

	"github.com/brizzai/image-feed/internal/auth"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const redirectPrompt = "Paste the address of the page you were redirected to:"

// codeSubmittedMsg carries a code taken from a pasted redirect URL
type codeSubmittedMsg struct {
	code string
}

// AuthView shows the authorization URL and accepts the redirect URL back
type AuthView struct {
	authURL      string
	callbackAddr string
	interceptor  auth.Interceptor
	textInput    textinput.Model
	status       string
	signingIn    bool
	width        int
	height       int
}

// NewAuthView creates a new authorization view
func NewAuthView(authURL, callbackAddr string, interceptor auth.Interceptor) AuthView {
	ti := textinput.New()
	ti.Placeholder = "https://unsplash.com/oauth/authorize/native?code=..."
	ti.Focus()
	ti.Width = 60
	ti.CharLimit = 2048

	return AuthView{
		authURL:      authURL,
		callbackAddr: callbackAddr,
		interceptor:  interceptor,
		textInput:    ti,
	}
}

// Init initializes the authorization view
func (m AuthView) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the input so another attempt can be made
func (m AuthView) Reset() AuthView {
	m.textInput.Reset()
	m.textInput.Focus()
	m.status = ""
	m.signingIn = false
	return m
}

// SigningIn marks the exchange as started
func (m AuthView) SigningIn() AuthView {
	m.signingIn = true
	m.status = completeMessageStyle("Signing in...")
	return m
}

// Update handles messages for the authorization view
func (m AuthView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.signingIn {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, tea.Quit
		case "enter":
			value := strings.TrimSpace(m.textInput.Value())
			if value == "" {
				m.status = statusMessageStyle("Please paste the redirect address")
				return m, nil
			}

			code, policy := m.interceptor.Decide(value)
			if policy != auth.PolicyCancel {
				m.status = statusMessageStyle("That address does not carry an authorization code")
				return m, nil
			}

			m = m.SigningIn()
			return m, func() tea.Msg { return codeSubmittedMsg{code: code} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 10 {
			m.textInput.Width = min(msg.Width-10, 100)
		}
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the authorization view
func (m AuthView) View() string {
	wrap := lipgloss.NewStyle()
	if m.width > 4 {
		wrap = wrap.Width(m.width - 4)
	}

	lines := []string{
		titleStyle.Render("Sign in to Unsplash"),
		"",
		"Open this address in your browser and grant access:",
		"",
		wrap.Render(headerStyle.Render(m.authURL)),
		"",
	}
	if m.callbackAddr != "" {
		lines = append(lines,
			helpStyle.Render("Waiting for the browser to return to http://"+m.callbackAddr),
			"",
		)
	}
	lines = append(lines, redirectPrompt, m.textInput.View(), "")
	if m.status != "" {
		lines = append(lines, m.status, "")
	}
	lines = append(lines, helpStyle.Render("(enter) Sign in | (esc) Quit"))

	return docStyle.Render(strings.Join(lines, "\n"))
}
