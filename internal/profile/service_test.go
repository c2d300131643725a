package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/models"
	"github.com/brizzai/image-feed/internal/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, bool) {
	return string(s), s != ""
}

func newTestRequester(t *testing.T, handler http.Handler, token string) *requester.HTTPRequester {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	unsplash := &config.UnsplashConfig{AccessKey: "key", APIBaseURL: server.URL}
	return requester.NewHTTPRequester(requester.HTTPRequesterParams{
		Unsplash: unsplash,
		HTTP:     &config.HTTPConfig{Timeout: 5 * time.Second, RateLimit: 1000, Burst: 1000},
		AuthManager: requester.NewHTTPAuthManager(requester.HTTPAuthManagerParams{
			Unsplash: unsplash,
			Tokens:   staticToken(token),
		}),
	})
}

func TestFetchProfile(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		want    models.Profile
		wantErr bool
	}{
		{
			name: "full name",
			body: `{"username":"jdoe","first_name":"Jane","last_name":"Doe","bio":"hello"}`,
			want: models.Profile{Username: "jdoe", Name: "Jane Doe", LoginName: "@jdoe", Bio: "hello"},
		},
		{
			name: "first name only",
			body: `{"username":"jdoe","first_name":"Jane","last_name":null,"bio":null}`,
			want: models.Profile{Username: "jdoe", Name: "Jane", LoginName: "@jdoe"},
		},
		{
			name: "no name",
			body: `{"username":"jdoe"}`,
			want: models.Profile{Username: "jdoe", LoginName: "@jdoe"},
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			wantErr: true,
		},
		{
			name:    "missing username",
			body:    `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/me", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				if tt.status != 0 {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte(tt.body))
			}), "tok")
			service := NewService(r)

			profile, err := service.FetchProfile(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				_, ok := service.Profile()
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, profile)

			cached, ok := service.Profile()
			assert.True(t, ok)
			assert.Equal(t, tt.want, cached)

			service.Reset()
			_, ok = service.Profile()
			assert.False(t, ok)
		})
	}
}

func TestFetchProfile_ConcurrentCallersShareRequest(t *testing.T) {
	var calls atomic.Int32
	arrived := make(chan struct{}, 4)
	release := make(chan struct{})
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"username":"jdoe"}`))
	}), "tok")
	service := NewService(r)

	var wg sync.WaitGroup
	results := make([]models.Profile, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := service.FetchProfile(context.Background())
			assert.NoError(t, err)
			results[i] = p
		}(i)
		if i == 0 {
			<-arrived
		}
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, p := range results {
		assert.Equal(t, "@jdoe", p.LoginName)
	}
}

func TestFetchProfile_CallerCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}), "tok")
	service := NewService(r)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := service.FetchProfile(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchProfile_ResetDiscardsInFlightResult(t *testing.T) {
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"username":"jdoe","first_name":"Jane"}`))
	}), "tok")
	service := NewService(r)

	errc := make(chan error, 1)
	go func() {
		_, err := service.FetchProfile(context.Background())
		errc <- err
	}()

	<-arrived
	service.Reset()
	close(release)

	err := <-errc
	assert.True(t, requester.IsCanceled(err), "got %v", err)
	_, ok := service.Profile()
	assert.False(t, ok, "profile from before Reset must not come back")

	// a fetch after Reset starts its own request
	p, err := service.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "@jdoe", p.LoginName)
}

func writeUser(t *testing.T, w http.ResponseWriter, small string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"username": "jdoe",
		"profile_image": map[string]string{
			"small":  small,
			"medium": small + "?m",
			"large":  small + "?l",
		},
	})
	assert.NoError(t, err)
}

func TestFetchAvatarURL(t *testing.T) {
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/jdoe", r.URL.Path)
		writeUser(t, w, "https://images.example.com/avatar")
	}), "")

	tests := []struct {
		size string
		want string
	}{
		{size: "", want: "https://images.example.com/avatar"},
		{size: "small", want: "https://images.example.com/avatar"},
		{size: "large", want: "https://images.example.com/avatar?l"},
	}

	for _, tt := range tests {
		t.Run("size "+tt.size, func(t *testing.T) {
			service := NewImageService(ImageServiceParams{
				Requester: r,
				Config:    &config.ProfileConfig{AvatarSize: tt.size},
			})
			changes, unsubscribe := service.Subscribe()
			defer unsubscribe()

			got, err := service.FetchAvatarURL(context.Background(), "jdoe")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, service.AvatarURL())
			assert.Equal(t, AvatarChanged{URL: tt.want}, <-changes)

			service.Reset()
			assert.Empty(t, service.AvatarURL())
		})
	}
}

func TestFetchAvatarURL_EmptyUsername(t *testing.T) {
	service := NewImageService(ImageServiceParams{Requester: newTestRequester(t, http.NotFoundHandler(), "")})
	_, err := service.FetchAvatarURL(context.Background(), "")
	assert.ErrorIs(t, err, requester.ErrInvalidRequest)
}

func TestFetchAvatarURL_FailureKeepsPreviousURL(t *testing.T) {
	var fail atomic.Bool
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeUser(t, w, "https://images.example.com/first")
	}), "tok")
	service := NewImageService(ImageServiceParams{Requester: r})

	_, err := service.FetchAvatarURL(context.Background(), "jdoe")
	require.NoError(t, err)

	fail.Store(true)
	_, err = service.FetchAvatarURL(context.Background(), "jdoe")
	status, ok := requester.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "https://images.example.com/first", service.AvatarURL())
}

func TestFetchAvatarURL_NewerCallCancelsPrevious(t *testing.T) {
	arrived := make(chan string, 4)
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimPrefix(r.URL.Path, "/users/")
		arrived <- user
		if user == "slow" {
			<-r.Context().Done()
			return
		}
		writeUser(t, w, "https://images.example.com/"+user)
	}), "tok")
	service := NewImageService(ImageServiceParams{Requester: r})

	slowDone := make(chan error, 1)
	go func() {
		_, err := service.FetchAvatarURL(context.Background(), "slow")
		slowDone <- err
	}()
	require.Equal(t, "slow", <-arrived)

	got, err := service.FetchAvatarURL(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/fast", got)

	select {
	case err := <-slowDone:
		assert.True(t, requester.IsCanceled(err))
	case <-time.After(2 * time.Second):
		t.Fatal("previous avatar request was not cancelled")
	}
	assert.Equal(t, "https://images.example.com/fast", service.AvatarURL())
}
