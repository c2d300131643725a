package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// alertKeyMap holds key bindings for the alert modal.
type alertKeyMap struct {
	confirm key.Binding
	dismiss key.Binding
}

func newAlertKeyMap() alertKeyMap {
	return alertKeyMap{
		confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", "n", "N"),
			key.WithHelp("enter/esc", "OK"),
		),
	}
}

// AlertModal shows a message over the current page. With an onConfirm
// command it asks a yes/no question instead.
type AlertModal struct {
	title     string
	message   string
	onConfirm tea.Cmd
	keys      alertKeyMap
}

// alertClosedMsg is sent when the modal is dismissed or confirmed
type alertClosedMsg struct{}

// NewAlert creates an informational modal
func NewAlert(title, message string) *AlertModal {
	return &AlertModal{title: title, message: message, keys: newAlertKeyMap()}
}

// NewConfirm creates a yes/no modal that runs onConfirm on yes
func NewConfirm(title, message string, onConfirm tea.Cmd) *AlertModal {
	return &AlertModal{title: title, message: message, onConfirm: onConfirm, keys: newAlertKeyMap()}
}

func (m *AlertModal) isConfirm() bool {
	return m.onConfirm != nil
}

// Update handles key presses while the modal is shown
func (m *AlertModal) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	closed := func() tea.Msg { return alertClosedMsg{} }
	switch {
	case m.isConfirm() && key.Matches(keyMsg, m.keys.confirm):
		return tea.Batch(closed, m.onConfirm)
	case key.Matches(keyMsg, m.keys.dismiss):
		return closed
	}
	return nil
}

// View renders the modal centered in width×height
func (m *AlertModal) View(width, height int) string {
	hint := "(enter) OK"
	if m.isConfirm() {
		hint = "(y) Yes | (n) No"
	}

	box := alertStyle.Render(fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		headerStyle.Render(m.title),
		m.message,
		helpStyle.Render(hint),
	))

	if width == 0 || height == 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
