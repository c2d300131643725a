package constants

const (
	// TokenType for Bearer authentication
	TokenType = "Bearer"

	// AuthHeaderName is the name of the Authorization header
	AuthHeaderName = "Authorization"

	// AuthHeaderPrefix is the prefix for the Authorization header value
	AuthHeaderPrefix = "Bearer "

	// TokenStorageKey is the fixed key the access token is persisted under
	TokenStorageKey = "access_token"

	// AuthorizePath is the provider page the user signs in on
	AuthorizePath = "/oauth/authorize"

	// TokenPath exchanges an authorization code for an access token
	TokenPath = "/oauth/token"

	// NativeRedirectPath is where the provider sends out-of-band clients after sign-in
	NativeRedirectPath = "/oauth/authorize/native"

	// CodeQueryParam carries the authorization code on the redirect URL
	CodeQueryParam = "code"

	// GrantTypeAuthorizationCode is the only grant this client performs
	GrantTypeAuthorizationCode = "authorization_code"

	// ResponseTypeCode requests an authorization code from the authorize page
	ResponseTypeCode = "code"
)

// DefaultScopes requested when none are configured
var DefaultScopes = []string{"public", "read_user", "write_likes"}
