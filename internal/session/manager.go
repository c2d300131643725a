// Package session ties the token, feed and profile services together into the
// sign-in and sign-out flows.
package session

import (
	"context"
	"fmt"

	"github.com/brizzai/image-feed/internal/auth"
	"github.com/brizzai/image-feed/internal/feed"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/models"
	"github.com/brizzai/image-feed/internal/profile"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ManagerParams struct {
	fx.In

	Tokens  auth.TokenStorage
	Auth    *auth.Service
	Feed    *feed.Service
	Profile *profile.Service
	Avatar  *profile.ImageService
}

// Manager decides where the app starts and runs login and logout
type Manager struct {
	tokens  auth.TokenStorage
	auth    *auth.Service
	feed    *feed.Service
	profile *profile.Service
	avatar  *profile.ImageService
}

func NewManager(params ManagerParams) *Manager {
	return &Manager{
		tokens:  params.Tokens,
		auth:    params.Auth,
		feed:    params.Feed,
		profile: params.Profile,
		avatar:  params.Avatar,
	}
}

// Authorized reports whether an access token is stored
func (m *Manager) Authorized() bool {
	_, ok := m.tokens.Token()
	return ok
}

// AuthURL returns the page the user visits to grant access
func (m *Manager) AuthURL() string {
	return m.auth.AuthURL()
}

// Login exchanges code for a token, then loads the profile and avatar.
// Only the exchange can fail the login.
func (m *Manager) Login(ctx context.Context, code string) error {
	if _, err := m.auth.FetchToken(ctx, code); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	m.Bootstrap(ctx)
	return nil
}

// Bootstrap loads the profile and then the avatar of its user. Failures are
// logged and leave the previous state in place.
func (m *Manager) Bootstrap(ctx context.Context) {
	p, err := m.profile.FetchProfile(ctx)
	if err != nil {
		logger.Warn("Profile unavailable", zap.Error(err))
		return
	}
	if _, err := m.avatar.FetchAvatarURL(ctx, p.Username); err != nil {
		logger.Warn("Avatar unavailable", zap.String("username", p.Username), zap.Error(err))
	}
}

// Profile returns the signed-in user and avatar URL, if loaded
func (m *Manager) Profile() (models.Profile, string, bool) {
	p, ok := m.profile.Profile()
	return p, m.avatar.AvatarURL(), ok
}

// Logout forgets the token and everything loaded with it
func (m *Manager) Logout() error {
	m.feed.Clean()
	m.profile.Reset()
	m.avatar.Reset()
	if err := m.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	logger.Info("Logged out")
	return nil
}
