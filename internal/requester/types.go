package requester

import (
	"net/url"

	"github.com/brizzai/image-feed/internal/config"
)

// RouteConfig holds the configuration for a specific Unsplash route
type RouteConfig struct {
	Path     string            `json:"path"` // may contain {name} placeholders
	Method   string            `json:"method"`
	BaseURL  string            `json:"base_url,omitempty"` // overrides the API base URL, e.g. for the OAuth host
	AuthType config.AuthType   `json:"auth_type"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Params are the per-call values of a route
type Params struct {
	Path  map[string]string
	Query url.Values
}
