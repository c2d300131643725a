package tui

import (
	"fmt"
	"strings"

	"github.com/brizzai/image-feed/internal/models"
	tuimodels "github.com/brizzai/image-feed/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// photoKeyMap holds key bindings for the single photo page
type photoKeyMap struct {
	back key.Binding
	like key.Binding
}

func newPhotoKeyMap() photoKeyMap {
	return photoKeyMap{
		back: key.NewBinding(
			key.WithKeys("esc", "backspace", "q"),
			key.WithHelp("esc", "Back"),
		),
		like: key.NewBinding(
			key.WithKeys("l", " "),
			key.WithHelp("l", "Like / unlike"),
		),
	}
}

// PhotoView shows one photo in full
type PhotoView struct {
	photo    models.Photo
	loading  bool
	loadErr  error
	keys     photoKeyMap
	viewport viewport.Model
	width    int
	height   int
}

// NewPhotoView creates the view for photo, then waits for its details
func NewPhotoView(photo models.Photo, width, height int) PhotoView {
	m := PhotoView{
		photo:    photo,
		loading:  true,
		keys:     newPhotoKeyMap(),
		viewport: viewport.New(0, 0),
	}
	return m.resize(width, height)
}

// Init returns the initial command for the photo view.
func (m PhotoView) Init() tea.Cmd {
	return nil
}

// Loaded applies the fetched details. The liked state stays as shown, since
// a toggle may be in flight.
func (m PhotoView) Loaded(photo models.Photo, err error) PhotoView {
	if photo.ID != "" && photo.ID != m.photo.ID {
		return m
	}
	m.loading = false
	m.loadErr = err
	if err == nil {
		liked, likes := m.photo.IsLiked, m.photo.Likes
		m.photo = photo
		m.photo.IsLiked, m.photo.Likes = liked, likes
	}
	m.viewport.SetContent(m.content())
	return m
}

// SetLiked updates the liked mark when id is the photo shown
func (m PhotoView) SetLiked(id string, liked bool) PhotoView {
	if m.photo.ID != id {
		return m
	}
	m.photo = tuimodels.PhotoItem{Photo: m.photo}.WithLiked(liked).Photo
	m.viewport.SetContent(m.content())
	return m
}

// Photo returns the photo shown
func (m PhotoView) Photo() models.Photo {
	return m.photo
}

func (m PhotoView) resize(width, height int) PhotoView {
	m.width = width
	m.height = height
	h, v := docStyle.GetFrameSize()
	m.viewport.Width = max(width-h, 0)
	m.viewport.Height = max(height-v-4, 0)
	m.viewport.SetContent(m.content())
	return m
}

// Update handles messages for the photo view
func (m PhotoView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.back):
			return m, func() tea.Msg { return backToTabsMsg{} }
		case key.Matches(msg, m.keys.like):
			id, like := m.photo.ID, !m.photo.IsLiked
			return m, func() tea.Msg { return likeRequestedMsg{id: id, like: like} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m PhotoView) content() string {
	item := tuimodels.PhotoItem{Photo: m.photo}
	rows := [][2]string{
		{"Author", authorLine(m.photo.Author)},
		{"Size", fmt.Sprintf("%d × %d", m.photo.Width, m.photo.Height)},
		{"Likes", fmt.Sprintf("%d", m.photo.Likes)},
	}
	if date := item.Date(); date != "" {
		rows = append(rows, [2]string{"Created", date})
	}
	if m.width > 0 {
		if h := m.photo.ScaledHeight(float64(m.viewport.Width)); h > 0 {
			rows = append(rows, [2]string{"Fits in", fmt.Sprintf("%d × %.0f", m.viewport.Width, h)})
		}
	}
	rows = append(rows,
		[2]string{"Full size", m.photo.LargeImageURL},
		[2]string{"Thumbnail", m.photo.ThumbImageURL},
	)

	var sb strings.Builder
	sb.WriteString(item.Title())
	sb.WriteString("\n\n")
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row[0]), row[1]))
		sb.WriteString("\n")
	}

	switch {
	case m.loading:
		sb.WriteString("\n" + helpStyle.Render("Loading details..."))
	case m.loadErr != nil:
		sb.WriteString("\n" + statusMessageStyle("Could not load details"))
	}
	return sb.String()
}

func authorLine(a models.Author) string {
	switch {
	case a.Name != "" && a.Username != "":
		return fmt.Sprintf("%s (@%s)", a.Name, a.Username)
	case a.Name != "":
		return a.Name
	case a.Username != "":
		return "@" + a.Username
	}
	return ""
}

// View renders the photo view
func (m PhotoView) View() string {
	header := titleStyle.Render("Photo " + m.photo.ID)
	help := helpStyle.Render("(l) Like | (esc) Back")
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.viewport.View(), help))
}
