package tui

import (
	"context"

	"github.com/brizzai/image-feed/internal/auth"
	"github.com/brizzai/image-feed/internal/feed"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/models"
	"github.com/brizzai/image-feed/internal/requester"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Session is the part of the session manager the UI drives
type Session interface {
	Authorized() bool
	AuthURL() string
	Login(ctx context.Context, code string) error
	Bootstrap(ctx context.Context)
	Profile() (models.Profile, string, bool)
	Logout() error
}

// FeedSource is the part of the feed service the UI drives
type FeedSource interface {
	FetchNextPage(ctx context.Context) error
	ChangeLike(ctx context.Context, id string, like bool) error
	PhotoDetails(ctx context.Context, id string) (models.Photo, error)
	Photos() []models.Photo
	Subscribe() (<-chan feed.Change, func())
}

// Deps are the services behind the UI
type Deps struct {
	Session     Session
	Feed        FeedSource
	Interceptor auth.Interceptor
	// Callback delivers codes caught by the loopback listener; nil when disabled
	Callback          <-chan string
	CallbackAddr      string
	PrefetchThreshold int
}

type page string

const (
	pageSplash page = "splash"
	pageAuth   page = "auth"
	pageTabs   page = "tabs"
	pagePhoto  page = "photo"
)

type tab int

const (
	tabFeed tab = iota
	tabProfile
)

const (
	alertTitle       = "Something went wrong"
	loginFailedText  = "Could not sign in"
	likeFailedText   = "Could not change the like, try again later"
	invalidImageText = "This photo has no image that can be opened"
	logoutFailedText = "Could not log out"
)

// AppModel is the main application model that manages page switching
type AppModel struct {
	ctx  context.Context
	deps Deps

	splash    SplashModel
	authView  AuthView
	feedPage  FeedPageModel
	photoView PhotoView
	profile   ProfilePageModel
	alert     *AlertModal

	page   page
	tab    tab
	width  int
	height int

	changes     <-chan feed.Change
	unsubscribe func()
	// awaitingCallback is set while a waitForCallback command is outstanding
	awaitingCallback bool
}

// NewAppModel creates a new AppModel on top of deps. ctx bounds every
// request the UI starts.
func NewAppModel(ctx context.Context, deps Deps) AppModel {
	return AppModel{
		ctx:       ctx,
		deps:      deps,
		splash:    NewSplashModel(),
		authView:  NewAuthView(deps.Session.AuthURL(), deps.CallbackAddr, deps.Interceptor),
		feedPage:  NewFeedPageModel(deps.PrefetchThreshold),
		profile:   NewProfilePageModel(),
		page:      pageSplash,
		tab:       tabFeed,
		photoView: PhotoView{},
	}
}

// Init initializes the AppModel
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.splash.Init(),
		checkAuth(m.deps.Session),
	)
}

// Update handles app-level messages and delegates to the appropriate page model
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		if m.alert != nil {
			return m, m.alert.Update(keyMsg)
		}
	}

	switch msg := msg.(type) {
	case alertClosedMsg:
		m.alert = nil
		return m, nil

	case authCheckedMsg:
		if msg.authorized {
			return m, bootstrap(m.ctx, m.deps.Session)
		}
		return m.showAuth()

	case codeSubmittedMsg:
		return m, login(m.ctx, m.deps.Session, msg.code)

	case callbackCodeMsg:
		m.awaitingCallback = false
		if m.page != pageAuth {
			return m, nil
		}
		m.authView = m.authView.SigningIn()
		return m, login(m.ctx, m.deps.Session, msg.code)

	case loginResultMsg:
		if msg.err != nil {
			logger.Warn("Login failed", zap.Error(msg.err))
			m.authView = m.authView.Reset()
			m.alert = NewAlert(alertTitle, loginFailedText)
			return m.armCallback()
		}
		return m.showTabs()

	case sessionReadyMsg:
		return m.showTabs()

	case feedChangedMsg:
		if msg.source != m.changes {
			return m, nil
		}
		m.feedPage = m.feedPage.SetPhotos(m.deps.Feed.Photos())
		return m, waitForChange(m.changes)

	case pageLoadedMsg:
		m.feedPage = m.feedPage.Loaded(msg.err)
		if msg.err != nil && !requester.IsCanceled(msg.err) {
			logger.Warn("Failed to load feed page", zap.Error(msg.err))
		}
		return m, nil

	case nextPageMsg:
		return m, fetchNextPage(m.ctx, m.deps.Feed)

	case likeRequestedMsg:
		m.feedPage = m.feedPage.SetLiked(msg.id, msg.like)
		m.photoView = m.photoView.SetLiked(msg.id, msg.like)
		return m, changeLike(m.ctx, m.deps.Feed, msg.id, msg.like)

	case likeResultMsg:
		if msg.err != nil {
			logger.Warn("Like toggle failed", zap.String("photo_id", msg.id), zap.Error(msg.err))
			m.feedPage = m.feedPage.SetLiked(msg.id, !msg.like)
			m.photoView = m.photoView.SetLiked(msg.id, !msg.like)
			m.alert = NewAlert(alertTitle, likeFailedText)
		}
		return m, nil

	case openPhotoMsg:
		if !msg.photo.ValidLargeURL() {
			m.alert = NewAlert(alertTitle, invalidImageText)
			return m, nil
		}
		m.page = pagePhoto
		m.photoView = NewPhotoView(msg.photo, m.width, m.height)
		return m, fetchPhotoDetails(m.ctx, m.deps.Feed, msg.photo.ID)

	case photoDetailsMsg:
		if msg.err != nil {
			logger.Warn("Failed to load photo details", zap.Error(msg.err))
		}
		m.photoView = m.photoView.Loaded(msg.photo, msg.err)
		return m, nil

	case backToTabsMsg:
		m.page = pageTabs
		return m, nil

	case confirmLogoutMsg:
		m.alert = NewConfirm("Bye, bye!", "Are you sure you want to log out?", msg.logout)
		return m, nil

	case logoutResultMsg:
		if msg.err != nil {
			m.alert = NewAlert(alertTitle, logoutFailedText)
			return m, nil
		}
		return m.showAuth()

	case tea.KeyMsg:
		if m.page == pageTabs && msg.String() == "tab" {
			if m.tab == tabFeed {
				m.tab = tabProfile
			} else {
				m.tab = tabFeed
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		var cmds []tea.Cmd
		var cmd tea.Cmd
		var tempModel tea.Model

		tempModel, cmd = m.splash.Update(msg)
		m.splash = tempModel.(SplashModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.authView.Update(msg)
		m.authView = tempModel.(AuthView)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.feedPage.Update(msg)
		m.feedPage = tempModel.(FeedPageModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.photoView.Update(msg)
		m.photoView = tempModel.(PhotoView)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.profile.Update(msg)
		m.profile = tempModel.(ProfilePageModel)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	// Delegate message to the active page
	var cmd tea.Cmd
	var tempModel tea.Model
	switch m.page {
	case pageSplash:
		tempModel, cmd = m.splash.Update(msg)
		m.splash = tempModel.(SplashModel)
	case pageAuth:
		tempModel, cmd = m.authView.Update(msg)
		m.authView = tempModel.(AuthView)
	case pagePhoto:
		tempModel, cmd = m.photoView.Update(msg)
		m.photoView = tempModel.(PhotoView)
	case pageTabs:
		if m.tab == tabProfile {
			tempModel, cmd = m.profile.Update(msg)
			m.profile = tempModel.(ProfilePageModel)
		} else {
			tempModel, cmd = m.feedPage.Update(msg)
			m.feedPage = tempModel.(FeedPageModel)
		}
	}

	return m, cmd
}

// showAuth drops everything tied to a session and shows the authorization page
func (m AppModel) showAuth() (tea.Model, tea.Cmd) {
	m.stopFeed()
	m.feedPage = NewFeedPageModel(m.deps.PrefetchThreshold).Resize(m.width, m.height)
	m.profile = NewProfilePageModel().Resize(m.width, m.height)
	m.authView = m.authView.Reset()
	m.page = pageAuth
	m.tab = tabFeed

	m, wait := m.armCallback()
	return m, tea.Batch(m.authView.Init(), wait)
}

// armCallback waits for the next code from the loopback listener unless a
// wait is already outstanding
func (m AppModel) armCallback() (AppModel, tea.Cmd) {
	if m.deps.Callback == nil || m.awaitingCallback {
		return m, nil
	}
	m.awaitingCallback = true
	return m, waitForCallback(m.ctx, m.deps.Callback)
}

// showTabs subscribes to the feed and loads its first page
func (m AppModel) showTabs() (tea.Model, tea.Cmd) {
	p, avatarURL, ok := m.deps.Session.Profile()
	if ok {
		m.profile = m.profile.SetProfile(p, avatarURL)
	}
	m.profile = m.profile.SetLogout(logout(m.deps.Session))
	m.page = pageTabs

	if m.changes != nil {
		return m, nil
	}
	m.changes, m.unsubscribe = m.deps.Feed.Subscribe()
	m.feedPage = m.feedPage.Loading()
	return m, tea.Batch(
		waitForChange(m.changes),
		fetchNextPage(m.ctx, m.deps.Feed),
	)
}

func (m *AppModel) stopFeed() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.changes = nil
	m.unsubscribe = nil
}

func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.stopFeed()
	return m, tea.Quit
}

// View renders the active page
func (m AppModel) View() string {
	if m.alert != nil {
		return m.alert.View(m.width, m.height)
	}

	switch m.page {
	case pageSplash:
		return m.splash.View()
	case pageAuth:
		return m.authView.View()
	case pagePhoto:
		return m.photoView.View()
	default: // tabs
		return m.tabsView()
	}
}

func (m AppModel) tabsView() string {
	feedTab, profileTab := activeTabStyle, inactiveTabStyle
	body := m.feedPage.View()
	if m.tab == tabProfile {
		feedTab, profileTab = inactiveTabStyle, activeTabStyle
		body = m.profile.View()
	}

	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		feedTab.Render("Feed"),
		profileTab.Render("Profile"),
		helpStyle.Render("  (tab) switch"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, docStyle.Render(tabs))
}

// Page returns the name of the active page
func (m AppModel) Page() string {
	return string(m.page)
}
