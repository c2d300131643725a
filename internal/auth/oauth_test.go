package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brizzai/image-feed/internal/auth/providers"
	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// mockProvider blocks every exchange until release is closed, unless the
// exchange context ends first
type mockProvider struct {
	calls   atomic.Int32
	started chan string
	release chan struct{}
	err     error
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
}

func (m *mockProvider) GetAuthURL() string {
	return "https://unsplash.test/oauth/authorize"
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	m.calls.Add(1)
	m.started <- code
	select {
	case <-m.release:
	case <-ctx.Done():
		return nil, &requester.NetworkError{Endpoint: "POST /oauth/token", Err: ctx.Err()}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &oauth2.Token{AccessToken: "token-for-" + code, TokenType: "Bearer"}, nil
}

func TestFetchToken_EmptyCode(t *testing.T) {
	provider := newMockProvider()
	service := NewService(provider, NewMemoryTokenStorage(""))

	_, err := service.FetchToken(context.Background(), "")
	assert.ErrorIs(t, err, requester.ErrInvalidRequest)
	assert.Zero(t, provider.calls.Load())
}

func TestFetchToken_ConcurrentSameCode(t *testing.T) {
	provider := newMockProvider()
	storage := NewMemoryTokenStorage("")
	service := NewService(provider, storage)

	var (
		wg       sync.WaitGroup
		token    *oauth2.Token
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		token, firstErr = service.FetchToken(context.Background(), "abc")
	}()
	<-provider.started

	_, err := service.FetchToken(context.Background(), "abc")
	assert.ErrorIs(t, err, requester.ErrInvalidRequest)

	close(provider.release)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Equal(t, "token-for-abc", token.AccessToken)
	assert.Equal(t, int32(1), provider.calls.Load())

	stored, ok := storage.Token()
	assert.True(t, ok)
	assert.Equal(t, "token-for-abc", stored)
}

func TestFetchToken_RepeatOfCompletedCode(t *testing.T) {
	provider := newMockProvider()
	close(provider.release)
	service := NewService(provider, NewMemoryTokenStorage(""))

	_, err := service.FetchToken(context.Background(), "abc")
	require.NoError(t, err)

	_, err = service.FetchToken(context.Background(), "abc")
	assert.ErrorIs(t, err, requester.ErrInvalidRequest)
	assert.Equal(t, int32(1), provider.calls.Load())

	_, err = service.FetchToken(context.Background(), "def")
	assert.NoError(t, err)
}

func TestFetchToken_FailedCodeCanBeRetried(t *testing.T) {
	provider := newMockProvider()
	close(provider.release)
	provider.err = &requester.HTTPError{StatusCode: http.StatusBadGateway, Endpoint: "POST /oauth/token"}
	storage := NewMemoryTokenStorage("")
	service := NewService(provider, storage)

	_, err := service.FetchToken(context.Background(), "abc")
	status, ok := requester.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, status)
	_, stored := storage.Token()
	assert.False(t, stored)

	provider.err = nil
	_, err = service.FetchToken(context.Background(), "abc")
	assert.NoError(t, err)
}

func TestFetchToken_DifferentCodeCancelsPrevious(t *testing.T) {
	provider := newMockProvider()
	storage := NewMemoryTokenStorage("")
	service := NewService(provider, storage)

	firstDone := make(chan error, 1)
	go func() {
		_, err := service.FetchToken(context.Background(), "old")
		firstDone <- err
	}()
	<-provider.started

	secondDone := make(chan error, 1)
	go func() {
		_, err := service.FetchToken(context.Background(), "new")
		secondDone <- err
	}()

	select {
	case err := <-firstDone:
		var netErr *requester.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, requester.IsCanceled(err))
	case <-time.After(2 * time.Second):
		t.Fatal("previous exchange was not cancelled")
	}

	<-provider.started
	close(provider.release)
	require.NoError(t, <-secondDone)

	stored, _ := storage.Token()
	assert.Equal(t, "token-for-new", stored)
}

// slowProvider answers each code once its own release channel is closed and
// does not stop when the exchange context is cancelled
type slowProvider struct {
	started chan string
	release map[string]chan struct{}
}

func (p *slowProvider) GetAuthURL() string {
	return "https://unsplash.test/oauth/authorize"
}

func (p *slowProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	p.started <- code
	<-p.release[code]
	return &oauth2.Token{AccessToken: "token-for-" + code, TokenType: "Bearer"}, nil
}

func TestFetchToken_SupersededResponseIsNotStored(t *testing.T) {
	provider := &slowProvider{
		started: make(chan string, 2),
		release: map[string]chan struct{}{"old": make(chan struct{}), "new": make(chan struct{})},
	}
	storage := NewMemoryTokenStorage("")
	service := NewService(provider, storage)

	oldDone := make(chan error, 1)
	go func() {
		_, err := service.FetchToken(context.Background(), "old")
		oldDone <- err
	}()
	require.Equal(t, "old", <-provider.started)

	newDone := make(chan error, 1)
	go func() {
		_, err := service.FetchToken(context.Background(), "new")
		newDone <- err
	}()
	require.Equal(t, "new", <-provider.started)

	close(provider.release["new"])
	require.NoError(t, <-newDone)

	// the old response arrives after the newer token was stored
	close(provider.release["old"])
	err := <-oldDone
	var netErr *requester.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, requester.IsCanceled(err))

	stored, ok := storage.Token()
	require.True(t, ok)
	assert.Equal(t, "token-for-new", stored)

	// the code that won stays spent
	_, err = service.FetchToken(context.Background(), "new")
	assert.ErrorIs(t, err, requester.ErrInvalidRequest)
}

func TestAuthURL(t *testing.T) {
	service := NewService(newMockProvider(), NewMemoryTokenStorage(""))
	assert.Equal(t, "https://unsplash.test/oauth/authorize", service.AuthURL())
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *providers.UnsplashProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.UnsplashConfig{
		AccessKey:   "access",
		SecretKey:   "secret",
		RedirectURI: "urn:ietf:wg:oauth:2.0:oob",
		Scopes:      []string{"public", "read_user"},
		BaseURL:     server.URL,
		APIBaseURL:  server.URL,
	}
	r := requester.NewHTTPRequester(requester.HTTPRequesterParams{
		Unsplash:    cfg,
		AuthManager: requester.NewHTTPAuthManager(requester.HTTPAuthManagerParams{Unsplash: cfg}),
	})
	return providers.NewUnsplashProvider(cfg, r)
}

func TestUnsplashProvider_ExchangeCode(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, token *oauth2.Token, err error)
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/oauth/token", r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, "access", q.Get("client_id"))
				assert.Equal(t, "secret", q.Get("client_secret"))
				assert.Equal(t, "urn:ietf:wg:oauth:2.0:oob", q.Get("redirect_uri"))
				assert.Equal(t, "the-code", q.Get("code"))
				assert.Equal(t, "authorization_code", q.Get("grant_type"))
				assert.Empty(t, r.Header.Get("Authorization"))
				_ = json.NewEncoder(w).Encode(map[string]any{
					"access_token":  "tok",
					"token_type":    "bearer",
					"refresh_token": "ref",
					"scope":         "public read_user",
					"created_at":    1700000000,
					"user_id":       42,
					"username":      "jane",
				})
			},
			check: func(t *testing.T, token *oauth2.Token, err error) {
				require.NoError(t, err)
				assert.Equal(t, "tok", token.AccessToken)
				assert.Equal(t, "bearer", token.TokenType)
				assert.Equal(t, "ref", token.RefreshToken)
				assert.Equal(t, "jane", token.Extra("username"))
				assert.Equal(t, "public read_user", token.Extra("scope"))
			},
		},
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			check: func(t *testing.T, token *oauth2.Token, err error) {
				var httpErr *requester.HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
			},
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			check: func(t *testing.T, token *oauth2.Token, err error) {
				assert.ErrorIs(t, err, requester.ErrNoData)
			},
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			check: func(t *testing.T, token *oauth2.Token, err error) {
				var decodeErr *requester.DecodeError
				assert.ErrorAs(t, err, &decodeErr)
			},
		},
		{
			name: "missing access token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
			},
			check: func(t *testing.T, token *oauth2.Token, err error) {
				var decodeErr *requester.DecodeError
				assert.ErrorAs(t, err, &decodeErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, tt.handler)
			token, err := provider.ExchangeCode(context.Background(), "the-code")
			tt.check(t, token, err)
		})
	}
}

func TestUnsplashProvider_GetAuthURL(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})

	u, err := url.Parse(provider.GetAuthURL())
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "access", q.Get("client_id"))
	assert.Equal(t, "urn:ietf:wg:oauth:2.0:oob", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "public read_user", q.Get("scope"))
	assert.False(t, q.Has("state"))
}

func TestFetchToken_NetworkErrorIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	cfg := &config.UnsplashConfig{AccessKey: "a", SecretKey: "s", BaseURL: server.URL}
	r := requester.NewHTTPRequester(requester.HTTPRequesterParams{
		Unsplash:    cfg,
		AuthManager: requester.NewHTTPAuthManager(requester.HTTPAuthManagerParams{Unsplash: cfg}),
	})
	service := NewService(providers.NewUnsplashProvider(cfg, r), NewMemoryTokenStorage(""))

	_, err := service.FetchToken(context.Background(), "code")
	var netErr *requester.NetworkError
	assert.True(t, errors.As(err, &netErr))
}
