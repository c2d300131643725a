package feed

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/metrics"
	"github.com/brizzai/image-feed/internal/models"
	"github.com/brizzai/image-feed/internal/notify"
	"github.com/brizzai/image-feed/internal/requester"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrPhotoNotFound is returned for a photo id that is not in the loaded list
var ErrPhotoNotFound = errors.New("photo not found")

const defaultPerPage = 10

type ServiceParams struct {
	fx.In

	Requester *requester.HTTPRequester
	Config    *config.FeedConfig
}

// Service holds the paginated photo feed. The list only grows until Clean.
type Service struct {
	perPage int

	listPhotos  requester.RouteExecutor
	getPhoto    requester.RouteExecutor
	likePhoto   requester.RouteExecutor
	unlikePhoto requester.RouteExecutor

	details *expirable.LRU[string, models.Photo]
	changes *notify.Broadcaster[Change]

	mu             sync.Mutex
	photos         []models.Photo
	index          map[string]int
	lastLoadedPage int
	fetching       bool
	cancel         context.CancelFunc
	generation     uint64
}

// NewService creates the feed service and its route executors
func NewService(params ServiceParams) *Service {
	perPage := defaultPerPage
	cacheSize := 128
	cacheTTL := params.Config.DetailCacheTTL
	if params.Config.PerPage > 0 {
		perPage = params.Config.PerPage
	}
	if params.Config.DetailCache > 0 {
		cacheSize = params.Config.DetailCache
	}

	r := params.Requester
	return &Service{
		perPage: perPage,
		listPhotos: r.BuildRouteExecutor(&requester.RouteConfig{
			Path:     "/photos",
			Method:   http.MethodGet,
			AuthType: config.AuthTypeBearer,
		}),
		getPhoto: r.BuildRouteExecutor(&requester.RouteConfig{
			Path:     "/photos/{id}",
			Method:   http.MethodGet,
			AuthType: config.AuthTypePublic,
		}),
		likePhoto: r.BuildRouteExecutor(&requester.RouteConfig{
			Path:     "/photos/{id}/like",
			Method:   http.MethodPost,
			AuthType: config.AuthTypeBearer,
		}),
		unlikePhoto: r.BuildRouteExecutor(&requester.RouteConfig{
			Path:     "/photos/{id}/like",
			Method:   http.MethodDelete,
			AuthType: config.AuthTypeBearer,
		}),
		details: expirable.NewLRU[string, models.Photo](cacheSize, nil, cacheTTL),
		changes: notify.NewBroadcaster[Change](),
		index:   make(map[string]int),
	}
}

// Subscribe returns a channel of list changes and a func to stop receiving them
func (s *Service) Subscribe() (<-chan Change, func()) {
	return s.changes.Subscribe()
}

// FetchNextPage loads the page after the last loaded one and appends the
// photos not already listed. While a page is loading further calls return
// nil immediately.
func (s *Service) FetchNextPage(ctx context.Context) error {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		logger.Debug("Page fetch already in flight")
		return nil
	}
	s.fetching = true
	page := s.lastLoadedPage + 1
	generation := s.generation
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	results, err := s.fetchPage(reqCtx, page)

	s.mu.Lock()
	if s.generation != generation {
		// Clean ran while the page was loading
		s.mu.Unlock()
		logger.Debug("Discarding page loaded before reset", zap.Int("page", page))
		return err
	}
	s.fetching = false
	s.cancel = nil
	if err != nil {
		s.mu.Unlock()
		return err
	}

	oldCount := len(s.photos)
	dropped := 0
	for _, result := range results {
		if _, exists := s.index[result.ID]; exists {
			dropped++
			continue
		}
		s.index[result.ID] = len(s.photos)
		s.photos = append(s.photos, result.toPhoto())
	}
	s.lastLoadedPage = page
	change := Change{OldCount: oldCount, NewCount: len(s.photos)}
	s.mu.Unlock()

	metrics.PhotosLoaded.Add(float64(change.Appended()))
	metrics.DuplicatePhotosDropped.Add(float64(dropped))
	logger.Debug("Loaded feed page",
		zap.Int("page", page),
		zap.Int("appended", change.Appended()),
		zap.Int("duplicates", dropped),
	)

	s.changes.Publish(change)
	return nil
}

func (s *Service) fetchPage(ctx context.Context, page int) ([]photoResult, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(s.perPage))

	resp, err := s.listPhotos(ctx, requester.Params{Query: query})
	if err != nil {
		return nil, err
	}

	var results []photoResult
	if err := requester.DecodeJSON(resp, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ChangeLike likes or unlikes a listed photo. The list entry only changes
// after the API confirms.
func (s *Service) ChangeLike(ctx context.Context, id string, like bool) error {
	if _, ok := s.Photo(id); !ok {
		return ErrPhotoNotFound
	}

	action, exec := "unlike", s.unlikePhoto
	if like {
		action, exec = "like", s.likePhoto
	}

	_, err := exec(ctx, requester.Params{Path: map[string]string{"id": id}})
	metrics.LikeToggles.WithLabelValues(action, metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		// Clean ran while the request was out
		s.mu.Unlock()
		return ErrPhotoNotFound
	}
	photo := &s.photos[i]
	if photo.IsLiked != like {
		if like {
			photo.Likes++
		} else if photo.Likes > 0 {
			photo.Likes--
		}
	}
	photo.IsLiked = like
	count := len(s.photos)
	s.mu.Unlock()

	s.details.Remove(id)
	s.changes.Publish(Change{OldCount: count, NewCount: count, PhotoID: id})
	return nil
}

// PhotoDetails returns the full record of one photo, served from a
// short-lived cache when possible
func (s *Service) PhotoDetails(ctx context.Context, id string) (models.Photo, error) {
	if photo, ok := s.details.Get(id); ok {
		return photo, nil
	}

	resp, err := s.getPhoto(ctx, requester.Params{Path: map[string]string{"id": id}})
	if err != nil {
		return models.Photo{}, err
	}

	var result photoResult
	if err := requester.DecodeJSON(resp, &result); err != nil {
		return models.Photo{}, err
	}
	if result.ID == "" {
		return models.Photo{}, requester.ErrNoData
	}

	photo := result.toPhoto()
	s.details.Add(id, photo)
	return photo, nil
}

// Photos returns a copy of the loaded list
func (s *Service) Photos() []models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	photos := make([]models.Photo, len(s.photos))
	copy(photos, s.photos)
	return photos
}

// Photo returns the listed photo with id
func (s *Service) Photo(id string) (models.Photo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return models.Photo{}, false
	}
	return s.photos[i], true
}

// Count returns the number of loaded photos
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}

// LastLoadedPage returns the last page merged into the list, 0 if none
func (s *Service) LastLoadedPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLoadedPage
}

// Clean empties the list, resets pagination and abandons any page in flight
func (s *Service) Clean() {
	s.mu.Lock()
	oldCount := len(s.photos)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.fetching = false
	s.photos = nil
	s.index = make(map[string]int)
	s.lastLoadedPage = 0
	s.mu.Unlock()

	s.details.Purge()
	if oldCount > 0 {
		s.changes.Publish(Change{OldCount: oldCount, NewCount: 0})
	}
}
