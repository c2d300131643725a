package tui

import (
	"context"

	"github.com/brizzai/image-feed/internal/feed"
	"github.com/brizzai/image-feed/internal/models"
	tea "github.com/charmbracelet/bubbletea"
)

type authCheckedMsg struct {
	authorized bool
}

// sessionReadyMsg follows a successful login or the bootstrap of a stored session
type sessionReadyMsg struct{}

type loginResultMsg struct {
	err error
}

type callbackCodeMsg struct {
	code string
}

type feedChangedMsg struct {
	change feed.Change
	source <-chan feed.Change
}

type pageLoadedMsg struct {
	err error
}

type likeRequestedMsg struct {
	id   string
	like bool
}

type likeResultMsg struct {
	id   string
	like bool
	err  error
}

type openPhotoMsg struct {
	photo models.Photo
}

type photoDetailsMsg struct {
	photo models.Photo
	err   error
}

type backToTabsMsg struct{}

type logoutResultMsg struct {
	err error
}

func checkAuth(s Session) tea.Cmd {
	return func() tea.Msg {
		return authCheckedMsg{authorized: s.Authorized()}
	}
}

func bootstrap(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		s.Bootstrap(ctx)
		return sessionReadyMsg{}
	}
}

func login(ctx context.Context, s Session, code string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg{err: s.Login(ctx, code)}
	}
}

func logout(s Session) tea.Cmd {
	return func() tea.Msg {
		return logoutResultMsg{err: s.Logout()}
	}
}

// waitForCallback delivers the code caught by the loopback listener. A nil
// channel never delivers.
func waitForCallback(ctx context.Context, codes <-chan string) tea.Cmd {
	if codes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case code, ok := <-codes:
			if !ok {
				return nil
			}
			return callbackCodeMsg{code: code}
		case <-ctx.Done():
			return nil
		}
	}
}

func waitForChange(changes <-chan feed.Change) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return nil
		}
		return feedChangedMsg{change: change, source: changes}
	}
}

func fetchNextPage(ctx context.Context, f FeedSource) tea.Cmd {
	return func() tea.Msg {
		return pageLoadedMsg{err: f.FetchNextPage(ctx)}
	}
}

func changeLike(ctx context.Context, f FeedSource, id string, like bool) tea.Cmd {
	return func() tea.Msg {
		return likeResultMsg{id: id, like: like, err: f.ChangeLike(ctx, id, like)}
	}
}

func fetchPhotoDetails(ctx context.Context, f FeedSource, id string) tea.Cmd {
	return func() tea.Msg {
		photo, err := f.PhotoDetails(ctx, id)
		return photoDetailsMsg{photo: photo, err: err}
	}
}
