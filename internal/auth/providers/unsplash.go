package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/brizzai/image-feed/internal/auth/constants"
	"github.com/brizzai/image-feed/internal/auth/models"
	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/requester"
	"golang.org/x/oauth2"
)

// UnsplashProvider performs the Unsplash authorization-code flow
type UnsplashProvider struct {
	oauth2Config *oauth2.Config
	exchange     requester.RouteExecutor
}

func NewUnsplashProvider(cfg *config.UnsplashConfig, r *requester.HTTPRequester) *UnsplashProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = constants.DefaultScopes
	}

	return &UnsplashProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.AccessKey,
			ClientSecret: cfg.SecretKey,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.BaseURL + constants.AuthorizePath,
				TokenURL:  cfg.BaseURL + constants.TokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		exchange: r.BuildRouteExecutor(&requester.RouteConfig{
			Method:   http.MethodPost,
			Path:     constants.TokenPath,
			BaseURL:  cfg.BaseURL,
			AuthType: config.AuthTypeNone,
		}),
	}
}

func (p *UnsplashProvider) GetAuthURL() string {
	return p.oauth2Config.AuthCodeURL("")
}

// ExchangeCode posts the code with the client credentials as query parameters,
// which is the form the Unsplash token endpoint documents.
func (p *UnsplashProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	query := url.Values{}
	query.Set("client_id", p.oauth2Config.ClientID)
	query.Set("client_secret", p.oauth2Config.ClientSecret)
	query.Set("redirect_uri", p.oauth2Config.RedirectURL)
	query.Set("code", code)
	query.Set("grant_type", constants.GrantTypeAuthorizationCode)

	resp, err := p.exchange(ctx, requester.Params{Query: query})
	if err != nil {
		return nil, err
	}

	var body models.TokenResponse
	if err := requester.DecodeJSON(resp, &body); err != nil {
		return nil, err
	}
	if body.AccessToken == "" {
		return nil, &requester.DecodeError{Endpoint: resp.Endpoint, Err: errors.New("missing access_token")}
	}

	tokenType := body.TokenType
	if tokenType == "" {
		tokenType = constants.TokenType
	}

	token := &oauth2.Token{
		AccessToken:  body.AccessToken,
		TokenType:    tokenType,
		RefreshToken: body.RefreshToken,
	}
	if body.ExpiresIn != nil && *body.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(*body.ExpiresIn) * time.Second)
	}

	return token.WithExtra(map[string]interface{}{
		"scope":      body.Scope,
		"created_at": body.CreatedAt,
		"user_id":    body.UserID,
		"username":   body.Username,
	}), nil
}
