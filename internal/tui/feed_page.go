package tui

import (
	"github.com/brizzai/image-feed/internal/models"
	tuimodels "github.com/brizzai/image-feed/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// tabBarHeight is the room kept below the list for the tab bar
const tabBarHeight = 3

// nextPageMsg asks the app to load the next feed page
type nextPageMsg struct{}

// FeedPageModel lists the loaded photos and asks for more near the end
type FeedPageModel struct {
	list      list.Model
	threshold int
	loading   bool
	width     int
	height    int
}

// NewFeedPageModel creates an empty feed page. threshold is how many rows
// before the end of the list the next page is requested.
func NewFeedPageModel(threshold int) FeedPageModel {
	delegate := newItemDelegate(newDelegateKeyMap())

	l := list.New(nil, delegate, 0, 0)
	l.Title = titleStyle.Render("Unsplash Feed")
	l.SetFilteringEnabled(false)
	l.SetShowFilter(false)
	// "l" is the like key
	l.KeyMap.NextPage = key.NewBinding(
		key.WithKeys("right", "pgdown", "f", "d"),
		key.WithHelp("→/f/pgdn", "next page"),
	)

	if threshold < 0 {
		threshold = 0
	}
	return FeedPageModel{list: l, threshold: threshold}
}

// Init returns the initial command for the feed page.
func (m FeedPageModel) Init() tea.Cmd {
	return nil
}

// Resize applies a window size
func (m FeedPageModel) Resize(width, height int) FeedPageModel {
	m.width = width
	m.height = height
	h, v := docStyle.GetFrameSize()
	m.list.SetSize(max(width-h, 0), max(height-v-tabBarHeight, 0))
	return m
}

// SetPhotos replaces the list content, keeping the cursor where it was
func (m FeedPageModel) SetPhotos(photos []models.Photo) FeedPageModel {
	items := make([]list.Item, len(photos))
	for i, photo := range photos {
		items[i] = tuimodels.PhotoItem{Photo: photo}
	}
	index := m.list.Index()
	m.list.SetItems(items)
	if index < len(items) {
		m.list.Select(index)
	}
	return m
}

// SetLiked updates the liked mark of one photo
func (m FeedPageModel) SetLiked(id string, liked bool) FeedPageModel {
	for i, item := range m.list.Items() {
		photoItem, ok := item.(tuimodels.PhotoItem)
		if ok && photoItem.Photo.ID == id {
			m.list.SetItem(i, photoItem.WithLiked(liked))
			break
		}
	}
	return m
}

// Loading marks a page request as started
func (m FeedPageModel) Loading() FeedPageModel {
	m.loading = true
	return m
}

// Loaded marks the page request as finished
func (m FeedPageModel) Loaded(err error) FeedPageModel {
	m.loading = false
	if err != nil {
		m.list.NewStatusMessage(statusMessageStyle("Could not load more photos"))
	}
	return m
}

// Photos returns the listed photos in order
func (m FeedPageModel) Photos() []models.Photo {
	items := m.list.Items()
	photos := make([]models.Photo, 0, len(items))
	for _, item := range items {
		if photoItem, ok := item.(tuimodels.PhotoItem); ok {
			photos = append(photos, photoItem.Photo)
		}
	}
	return photos
}

// Update handles list navigation and requests the next page near the end
func (m FeedPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		return m.Resize(msg.Width, msg.Height), nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	if _, ok := msg.(tea.KeyMsg); ok && m.nearEnd() && !m.loading {
		m.loading = true
		cmds = append(cmds, func() tea.Msg { return nextPageMsg{} })
	}
	return m, tea.Batch(cmds...)
}

func (m FeedPageModel) nearEnd() bool {
	count := len(m.list.Items())
	if count == 0 {
		return false
	}
	return m.list.Index() >= count-1-m.threshold
}

// View renders the feed list
func (m FeedPageModel) View() string {
	if len(m.list.Items()) == 0 {
		message := "No photos yet"
		if m.loading {
			message = "Loading photos..."
		}
		return docStyle.Render(titleStyle.Render("Unsplash Feed") + "\n\n" + helpStyle.Render(message))
	}
	return docStyle.Render(m.list.View())
}
