package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/brizzai/image-feed/internal/auth/constants"
	"github.com/brizzai/image-feed/internal/auth/providers"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/metrics"
	"github.com/brizzai/image-feed/internal/requester"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Service exchanges authorization codes for access tokens and stores them
type Service struct {
	provider providers.Provider
	storage  TokenStorage

	mu           sync.Mutex
	inflightCode string
	cancel       context.CancelFunc
	seq          uint64
	lastCode     string // last code exchanged successfully
}

// NewService creates a new OAuth service
func NewService(provider providers.Provider, storage TokenStorage) *Service {
	return &Service{
		provider: provider,
		storage:  storage,
	}
}

// AuthURL returns the page the user visits to grant access
func (s *Service) AuthURL() string {
	return s.provider.GetAuthURL()
}

// FetchToken exchanges code for an access token and persists it.
//
// A call for the code that is already being exchanged, or for the code that
// was last exchanged successfully, fails with requester.ErrInvalidRequest
// without touching the network. A call for a different code cancels the
// exchange in flight.
func (s *Service) FetchToken(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", requester.ErrInvalidRequest)
	}

	reqCtx, seq, err := s.begin(ctx, code)
	if err != nil {
		return nil, err
	}

	token, err := s.provider.ExchangeCode(reqCtx, code)
	err = s.finish(seq, code, token, err)

	metrics.TokenExchanges.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		logger.Warn("Token exchange failed", zap.Error(err))
		return nil, err
	}

	logger.Info("Token exchange succeeded")
	return token, nil
}

func (s *Service) begin(ctx context.Context, code string) (context.Context, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		if s.inflightCode == code {
			return nil, 0, fmt.Errorf("%w: code is already being exchanged", requester.ErrInvalidRequest)
		}
		logger.Debug("Cancelling token exchange for a superseded code")
		s.cancel()
	} else if s.lastCode == code {
		return nil, 0, fmt.Errorf("%w: code was already exchanged", requester.ErrInvalidRequest)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	s.seq++
	s.cancel = cancel
	s.inflightCode = code
	return reqCtx, s.seq, nil
}

// finish persists the token of a successful exchange and releases the
// in-flight slot. An exchange superseded by a newer code never persists,
// even when its response made it back before the cancel.
func (s *Service) finish(seq uint64, code string, token *oauth2.Token, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.seq == seq
	if err == nil && !latest {
		err = &requester.NetworkError{Endpoint: "POST " + constants.TokenPath, Err: context.Canceled}
	}
	if err == nil {
		if storeErr := s.storage.SetToken(token.AccessToken); storeErr != nil {
			err = fmt.Errorf("failed to store access token: %w", storeErr)
		} else {
			s.lastCode = code
		}
	}

	if !latest {
		// a newer exchange owns the in-flight slot
		return err
	}
	s.cancel()
	s.cancel = nil
	s.inflightCode = ""
	return err
}

// Storage returns the token storage the service writes to
func (s *Service) Storage() TokenStorage {
	return s.storage
}
