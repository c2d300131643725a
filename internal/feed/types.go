package feed

import (
	"time"

	"github.com/brizzai/image-feed/internal/models"
)

// photoResult is the Unsplash photo JSON
type photoResult struct {
	ID          string  `json:"id"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	CreatedAt   string  `json:"created_at"`
	Description *string `json:"description"`
	URLs        struct {
		Thumb   string `json:"thumb"`
		Regular string `json:"regular"`
		Full    string `json:"full"`
	} `json:"urls"`
	LikedByUser bool `json:"liked_by_user"`
	Likes       int  `json:"likes"`
	User        struct {
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"user"`
}

func (r photoResult) toPhoto() models.Photo {
	photo := models.Photo{
		ID:            r.ID,
		Width:         r.Width,
		Height:        r.Height,
		ThumbImageURL: r.URLs.Thumb,
		LargeImageURL: r.URLs.Full,
		IsLiked:       r.LikedByUser,
		Likes:         r.Likes,
		Author: models.Author{
			Username: r.User.Username,
			Name:     r.User.Name,
		},
	}
	if r.Description != nil {
		photo.Description = *r.Description
	}
	if createdAt, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		photo.CreatedAt = &createdAt
	}
	return photo
}

// Change is published whenever the photo list changes. A page merge grows
// NewCount past OldCount; a like toggle leaves both equal.
type Change struct {
	OldCount int
	NewCount int
	// PhotoID is set when a single entry changed
	PhotoID string
}

// Appended reports how many photos were added at the end of the list
func (c Change) Appended() int {
	if c.NewCount <= c.OldCount {
		return 0
	}
	return c.NewCount - c.OldCount
}
