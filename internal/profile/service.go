package profile

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/models"
	"github.com/brizzai/image-feed/internal/requester"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type profileResult struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

func (r profileResult) toProfile() models.Profile {
	name := strings.TrimSpace(deref(r.FirstName) + " " + deref(r.LastName))
	return models.Profile{
		Username:  r.Username,
		Name:      name,
		LoginName: "@" + r.Username,
		Bio:       deref(r.Bio),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Service fetches and caches the signed-in user's profile
type Service struct {
	getMe requester.RouteExecutor
	group singleflight.Group

	mu      sync.RWMutex
	profile *models.Profile
	gen     uint64 // bumped by Reset
}

// errStale is returned for a response that arrived after Reset
var errStale = fmt.Errorf("profile was reset during the request: %w", context.Canceled)

func NewService(r *requester.HTTPRequester) *Service {
	return &Service{
		getMe: r.BuildRouteExecutor(&requester.RouteConfig{
			Path:     "/me",
			Method:   http.MethodGet,
			AuthType: config.AuthTypeBearer,
		}),
	}
}

// FetchProfile loads the profile from GET /me. Concurrent callers share one
// request; each caller stops waiting when its own ctx is done.
func (s *Service) FetchProfile(ctx context.Context) (models.Profile, error) {
	ch := s.group.DoChan("me", func() (interface{}, error) {
		return s.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return models.Profile{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			logger.Warn("Failed to fetch profile", zap.Error(res.Err))
			return models.Profile{}, res.Err
		}
		if res.Shared {
			logger.Debug("Profile request shared between callers")
		}
		return res.Val.(models.Profile), nil
	}
}

func (s *Service) fetch(ctx context.Context) (models.Profile, error) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	resp, err := s.getMe(ctx, requester.Params{})
	if err != nil {
		return models.Profile{}, err
	}

	var result profileResult
	if err := requester.DecodeJSON(resp, &result); err != nil {
		return models.Profile{}, err
	}
	if result.Username == "" {
		return models.Profile{}, requester.ErrNoData
	}

	profile := result.toProfile()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return models.Profile{}, errStale
	}
	s.profile = &profile
	return profile, nil
}

// Profile returns the last fetched profile
func (s *Service) Profile() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return models.Profile{}, false
	}
	return *s.profile, true
}

// Reset forgets the cached profile. A request in flight is not waited for
// and its result is discarded.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.gen++
	s.group.Forget("me")
}
