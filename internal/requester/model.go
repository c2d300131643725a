package requester

import (
	"context"
	"net/http"
)

// RouteExecutor is a function that can execute a route with params
type RouteExecutor func(ctx context.Context, params Params) (*Response, error)

// Request represents a fully built HTTP request
type Request struct {
	ID          string
	URL         string
	Method      string
	Route       *RouteConfig
	HttpRequest *http.Request // The actual HTTP request
}

// Response represents a successful (2xx) HTTP response
type Response struct {
	Endpoint   string
	StatusCode int
	Body       []byte
	Headers    http.Header
}
