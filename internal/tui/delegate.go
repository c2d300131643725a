package tui

import (
	"github.com/brizzai/image-feed/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// newItemDelegate returns a list.DefaultDelegate with custom update and help functions.
func newItemDelegate(keys *delegateKeyMap) list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.UpdateFunc = func(msg tea.Msg, m *list.Model) tea.Cmd {
		item, ok := m.SelectedItem().(models.PhotoItem)
		if !ok {
			return nil
		}

		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch {
			case key.Matches(msg, keys.like):
				like := !item.Photo.IsLiked
				id := item.Photo.ID
				status := "Liked "
				if !like {
					status = "Unliked "
				}
				return tea.Batch(
					m.NewStatusMessage(statusMessageStyle(status+item.Photo.ID)),
					func() tea.Msg { return likeRequestedMsg{id: id, like: like} },
				)
			case key.Matches(msg, keys.open):
				photo := item.Photo
				return func() tea.Msg { return openPhotoMsg{photo: photo} }
			}
		}
		return nil
	}

	help := []key.Binding{keys.like, keys.open}

	d.ShortHelpFunc = func() []key.Binding {
		return help
	}

	d.FullHelpFunc = func() [][]key.Binding {
		return [][]key.Binding{help}
	}

	return d
}

// delegateKeyMap holds key bindings for list item actions.
type delegateKeyMap struct {
	like key.Binding
	open key.Binding
}

// ShortHelp returns additional short help entries for the delegate.
func (d delegateKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		d.like,
		d.open,
	}
}

// FullHelp returns additional full help entries for the delegate.
func (d delegateKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			d.like,
			d.open,
		},
	}
}

// newDelegateKeyMap creates a new delegateKeyMap with default bindings.
func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		like: key.NewBinding(
			key.WithKeys("l", " "),
			key.WithHelp("l/space", "Like / unlike"),
		),
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open photo"),
		),
	}
}
