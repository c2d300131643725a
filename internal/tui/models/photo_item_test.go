package models

import (
	"testing"
	"time"

	"github.com/brizzai/image-feed/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPhotoItem(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		photo           models.Photo
		wantTitle       string
		wantDescription string
	}{
		{
			name: "described photo",
			photo: models.Photo{
				ID:          "a",
				Description: "Mountains",
				Width:       4000,
				Height:      3000,
				CreatedAt:   &createdAt,
				Author:      models.Author{Name: "Jane"},
			},
			wantTitle:       "♡ Mountains",
			wantDescription: "by Jane · 4000×3000 · 1 May 2024",
		},
		{
			name:            "bare photo",
			photo:           models.Photo{ID: "b"},
			wantTitle:       "♡ Photo b",
			wantDescription: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := PhotoItem{Photo: tt.photo}
			assert.Equal(t, tt.wantTitle, item.Title())
			assert.Equal(t, tt.wantDescription, item.Description())
		})
	}
}

func TestPhotoItem_WithLiked(t *testing.T) {
	item := PhotoItem{Photo: models.Photo{ID: "a", Likes: 3}}

	liked := item.WithLiked(true)
	assert.True(t, liked.Photo.IsLiked)
	assert.Equal(t, 4, liked.Photo.Likes)
	assert.Contains(t, liked.Title(), "♥")

	// setting the same state twice does not count twice
	assert.Equal(t, 4, liked.WithLiked(true).Photo.Likes)

	unliked := liked.WithLiked(false)
	assert.False(t, unliked.Photo.IsLiked)
	assert.Equal(t, 3, unliked.Photo.Likes)

	// the original is untouched
	assert.False(t, item.Photo.IsLiked)
}
