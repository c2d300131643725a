package profile

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/notify"
	"github.com/brizzai/image-feed/internal/requester"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultAvatarSize = "small"

// AvatarChanged is published when a new avatar URL is stored
type AvatarChanged struct {
	URL string
}

type userResult struct {
	ProfileImage map[string]string `json:"profile_image"`
}

type ImageServiceParams struct {
	fx.In

	Requester *requester.HTTPRequester
	Config    *config.ProfileConfig `optional:"true"`
}

// ImageService resolves the avatar URL of a user. Only the latest request counts.
type ImageService struct {
	getUser requester.RouteExecutor
	size    string
	changes *notify.Broadcaster[AvatarChanged]

	mu        sync.Mutex
	cancel    context.CancelFunc
	seq       uint64
	avatarURL string
}

func NewImageService(params ImageServiceParams) *ImageService {
	size := defaultAvatarSize
	if params.Config != nil && params.Config.AvatarSize != "" {
		size = params.Config.AvatarSize
	}

	return &ImageService{
		getUser: params.Requester.BuildRouteExecutor(&requester.RouteConfig{
			Path:     "/users/{username}",
			Method:   http.MethodGet,
			AuthType: config.AuthTypePublic,
		}),
		size:    size,
		changes: notify.NewBroadcaster[AvatarChanged](),
	}
}

// Subscribe returns a channel of avatar changes and a func to stop receiving them
func (s *ImageService) Subscribe() (<-chan AvatarChanged, func()) {
	return s.changes.Subscribe()
}

// FetchAvatarURL loads the avatar of username, cancelling any earlier request
func (s *ImageService) FetchAvatarURL(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("%w: empty username", requester.ErrInvalidRequest)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	avatarURL, err := s.fetch(reqCtx, username)

	s.mu.Lock()
	latest := seq == s.seq
	if latest {
		s.cancel = nil
		if err == nil {
			s.avatarURL = avatarURL
		}
	}
	s.mu.Unlock()
	cancel()

	if err != nil {
		logger.Warn("Failed to fetch avatar", zap.String("username", username), zap.Error(err))
		return "", err
	}
	if latest {
		s.changes.Publish(AvatarChanged{URL: avatarURL})
	}
	return avatarURL, nil
}

func (s *ImageService) fetch(ctx context.Context, username string) (string, error) {
	resp, err := s.getUser(ctx, requester.Params{Path: map[string]string{"username": username}})
	if err != nil {
		return "", err
	}

	var result userResult
	if err := requester.DecodeJSON(resp, &result); err != nil {
		return "", err
	}
	avatarURL := result.ProfileImage[s.size]
	if avatarURL == "" {
		return "", fmt.Errorf("%w: no %s profile image", requester.ErrNoData, s.size)
	}
	return avatarURL, nil
}

// AvatarURL returns the last stored avatar URL
func (s *ImageService) AvatarURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avatarURL
}

// Reset cancels any request in flight and forgets the avatar
func (s *ImageService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.avatarURL = ""
}
