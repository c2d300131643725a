package auth

import (
	"net/url"

	"github.com/brizzai/image-feed/internal/auth/constants"
)

// NavigationPolicy tells the caller whether to follow a navigation
type NavigationPolicy int

const (
	PolicyAllow NavigationPolicy = iota
	PolicyCancel
)

func (p NavigationPolicy) String() string {
	if p == PolicyCancel {
		return "cancel"
	}
	return "allow"
}

// Interceptor inspects navigations for the terminal authorization redirect.
// It holds no state and is safe for concurrent use.
type Interceptor struct {
	path string
}

func NewInterceptor() Interceptor {
	return Interceptor{path: constants.NativeRedirectPath}
}

// Decide returns the authorization code and PolicyCancel when rawURL is the
// native redirect carrying a code; otherwise it returns PolicyAllow.
func (i Interceptor) Decide(rawURL string) (string, NavigationPolicy) {
	code, ok := i.Code(rawURL)
	if !ok {
		return "", PolicyAllow
	}
	return code, PolicyCancel
}

// Code extracts the authorization code from a redirect URL
func (i Interceptor) Code(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	return i.CodeFromURL(u)
}

func (i Interceptor) CodeFromURL(u *url.URL) (string, bool) {
	path := i.path
	if path == "" {
		path = constants.NativeRedirectPath
	}
	if u == nil || u.Path != path {
		return "", false
	}
	code := u.Query().Get(constants.CodeQueryParam)
	if code == "" {
		return "", false
	}
	return code, true
}
