package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// HTTPRequester handles both request building and execution
type HTTPRequester struct {
	client  *http.Client
	builder *HTTPRequestBuilder
	limiter *rate.Limiter
}

type HTTPRequesterParams struct {
	fx.In

	Unsplash    *config.UnsplashConfig
	HTTP        *config.HTTPConfig `optional:"true"`
	AuthManager AuthManager
}

// NewHTTPRequester creates a new HTTPRequester
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	timeout := DefaultTimeout
	limit, burst := rate.Limit(DefaultRateLimit), DefaultRateLimit
	if params.HTTP != nil {
		if params.HTTP.Timeout > 0 {
			timeout = params.HTTP.Timeout
		}
		if params.HTTP.RateLimit > 0 {
			limit = rate.Limit(params.HTTP.RateLimit)
		}
		if params.HTTP.Burst > 0 {
			burst = params.HTTP.Burst
		}
	}

	return &HTTPRequester{
		client: &http.Client{
			Timeout: timeout,
		},
		builder: NewHTTPRequestBuilder(HTTPRequestBuilderParams{
			Unsplash:    params.Unsplash,
			HTTP:        params.HTTP,
			AuthManager: params.AuthManager,
		}),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// SetRateLimit replaces the client-side rate limit
func (r *HTTPRequester) SetRateLimit(requestsPerSecond float64, burst int) {
	r.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// BuildRouteExecutor creates a function that can execute requests for a specific route
func (r *HTTPRequester) BuildRouteExecutor(route *RouteConfig) RouteExecutor {
	return func(ctx context.Context, params Params) (*Response, error) {
		req, err := r.builder.BuildRequest(ctx, route, params)
		if err != nil {
			return nil, err
		}
		logger.Debug("request route",
			zap.String("request_id", req.ID),
			zap.String("method", req.Method),
			zap.String("route", route.Path),
		)

		resp, err := r.execute(ctx, req)
		if err != nil {
			logger.Warn("request failed",
				zap.String("request_id", req.ID),
				zap.String("route", route.Path),
				zap.Error(err),
			)
			return nil, err
		}
		return resp, nil
	}
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(ctx context.Context, req *Request) (*Response, error) {
	endpoint := req.Method + " " + req.Route.Path

	if r.limiter.Tokens() < 1 {
		metrics.RateLimitWaits.Inc()
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	start := time.Now()
	resp, err := r.client.Do(req.HttpRequest)
	if err != nil {
		metrics.ObserveRequest(req.Method, req.Route.Path, metrics.StatusTransportError, time.Since(start))
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	metrics.ObserveRequest(req.Method, req.Route.Path, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: bodyBytes}
	}

	return &Response{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}

// DecodeJSON decodes a response body into out
func DecodeJSON(resp *Response, out any) error {
	if resp == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return ErrNoData
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &DecodeError{Endpoint: resp.Endpoint, Err: err}
	}
	return nil
}

// IsCanceled reports whether err was caused by context cancellation
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
