package requester

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/brizzai/image-feed/internal/config"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

// HTTPRequestBuilderParams holds the parameters for creating an HTTPRequestBuilder
type HTTPRequestBuilderParams struct {
	fx.In

	Unsplash    *config.UnsplashConfig
	HTTP        *config.HTTPConfig
	AuthManager AuthManager
}

// HTTPRequestBuilder turns a route and its params into an authenticated *http.Request
type HTTPRequestBuilder struct {
	baseURL   string
	userAgent string
	authMgr   AuthManager
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(params HTTPRequestBuilderParams) *HTTPRequestBuilder {
	b := &HTTPRequestBuilder{authMgr: params.AuthManager}
	if params.Unsplash != nil {
		b.baseURL = params.Unsplash.APIBaseURL
	}
	if params.HTTP != nil {
		b.userAgent = params.HTTP.UserAgent
	}
	return b
}

// BuildRequest builds a request from a route and parameters
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, route *RouteConfig, params Params) (*Request, error) {
	if route == nil {
		return nil, fmt.Errorf("%w: route config is nil", ErrInvalidRequest)
	}

	rawURL, err := b.buildURL(route, params)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, route.Method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Version", "v1")
	httpReq.Header.Set("X-Request-ID", requestID)
	if b.userAgent != "" {
		httpReq.Header.Set("User-Agent", b.userAgent)
	}
	for key, value := range route.Headers {
		httpReq.Header.Set(key, value)
	}

	if b.authMgr != nil {
		if err := b.authMgr.ApplyAuth(httpReq, route.AuthType); err != nil {
			return nil, fmt.Errorf("failed to apply authentication: %w", err)
		}
	}

	return &Request{
		ID:          requestID,
		URL:         rawURL,
		Method:      route.Method,
		Route:       route,
		HttpRequest: httpReq,
	}, nil
}

func (b *HTTPRequestBuilder) buildURL(route *RouteConfig, params Params) (string, error) {
	base := route.BaseURL
	if base == "" {
		base = b.baseURL
	}

	path := route.Path
	for key, value := range params.Path {
		if value == "" {
			return "", fmt.Errorf("%w: empty path parameter %q", ErrInvalidRequest, key)
		}
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(value))
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("%w: unresolved path parameters in %s", ErrInvalidRequest, path)
	}

	u, err := url.Parse(strings.TrimSuffix(base, "/") + path)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: malformed URL %q", ErrInvalidRequest, base+path)
	}

	if len(params.Query) > 0 {
		q := u.Query()
		for key, values := range params.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}
