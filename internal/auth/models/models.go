package models

// TokenResponse is the snake_case body returned by the token endpoint
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
	ExpiresIn    *int64 `json:"expires_in,omitempty"`
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
}
