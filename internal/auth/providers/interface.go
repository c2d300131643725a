package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider defines the interface that OAuth providers must implement
type Provider interface {
	// GetAuthURL returns the authorization URL the user signs in on
	GetAuthURL() string

	// ExchangeCode exchanges an authorization code for a token
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
}
