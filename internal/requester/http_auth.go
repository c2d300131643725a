package requester

import (
	"fmt"
	"net/http"

	"github.com/brizzai/image-feed/internal/config"
	"go.uber.org/fx"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(req *http.Request, authType config.AuthType) error
}

// TokenSource supplies the stored bearer token, if any
type TokenSource interface {
	Token() (string, bool)
}

// HTTPAuthManager implements the AuthManager interface
type HTTPAuthManager struct {
	accessKey string
	tokens    TokenSource
}

type HTTPAuthManagerParams struct {
	fx.In

	Unsplash *config.UnsplashConfig
	Tokens   TokenSource
}

// NewHTTPAuthManager creates a new HTTPAuthManager
func NewHTTPAuthManager(params HTTPAuthManagerParams) *HTTPAuthManager {
	return &HTTPAuthManager{
		accessKey: params.Unsplash.AccessKey,
		tokens:    params.Tokens,
	}
}

// ApplyAuth adds authentication to the request
func (a *HTTPAuthManager) ApplyAuth(req *http.Request, authType config.AuthType) error {
	switch authType {
	case config.AuthTypeNone:
		return nil
	case config.AuthTypeBearer, "":
		token, ok := a.token()
		if !ok {
			return fmt.Errorf("%w: no access token stored", ErrInvalidRequest)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	case config.AuthTypeClientID:
		if a.accessKey == "" {
			return fmt.Errorf("%w: no access key configured", ErrInvalidRequest)
		}
		req.Header.Set("Authorization", "Client-ID "+a.accessKey)
	case config.AuthTypePublic:
		if token, ok := a.token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
			return nil
		}
		return a.ApplyAuth(req, config.AuthTypeClientID)
	default:
		return fmt.Errorf("unsupported auth type: %s", authType)
	}
	return nil
}

func (a *HTTPAuthManager) token() (string, bool) {
	if a.tokens == nil {
		return "", false
	}
	token, ok := a.tokens.Token()
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
