package models

// Profile is the signed-in user
type Profile struct {
	Username  string `json:"username" yaml:"username"`
	Name      string `json:"name" yaml:"name"`
	LoginName string `json:"login_name" yaml:"login_name"`
	Bio       string `json:"bio,omitempty" yaml:"bio,omitempty"`
}
