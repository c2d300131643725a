package models

import (
	"net/url"
	"time"
)

// Photo is one entry of the feed
type Photo struct {
	ID            string     `json:"id" yaml:"id"`
	Width         int        `json:"width" yaml:"width"`
	Height        int        `json:"height" yaml:"height"`
	CreatedAt     *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty"`
	ThumbImageURL string     `json:"thumb_image_url" yaml:"thumb_image_url"`
	LargeImageURL string     `json:"large_image_url" yaml:"large_image_url"`
	IsLiked       bool       `json:"is_liked" yaml:"is_liked"`
	Likes         int        `json:"likes" yaml:"likes"`
	Author        Author     `json:"author" yaml:"author"`
}

// Author is the photographer of a photo
type Author struct {
	Username string `json:"username" yaml:"username"`
	Name     string `json:"name" yaml:"name"`
}

// ValidLargeURL reports whether the full-size URL can be opened
func (p Photo) ValidLargeURL() bool {
	return validURL(p.LargeImageURL)
}

// ValidThumbURL reports whether the thumbnail URL can be opened
func (p Photo) ValidThumbURL() bool {
	return validURL(p.ThumbImageURL)
}

// ScaledHeight returns the height the photo takes when scaled to width,
// keeping its aspect ratio. Photos without dimensions scale to 0.
func (p Photo) ScaledHeight(width float64) float64 {
	if p.Width <= 0 || p.Height <= 0 || width <= 0 {
		return 0
	}
	return float64(p.Height) * width / float64(p.Width)
}

func validURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
