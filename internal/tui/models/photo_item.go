package models

import (
	"fmt"
	"strings"

	"github.com/brizzai/image-feed/internal/models"
	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2 January 2006"

var likedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f56a96"))

// PhotoItem wraps a Photo for display in the feed list
// Implements list.Item
type PhotoItem struct {
	Photo models.Photo
}

func (i PhotoItem) Title() string {
	title := i.Photo.Description
	if title == "" {
		title = "Photo " + i.Photo.ID
	}
	if i.Photo.IsLiked {
		return likedStyle.Render("♥ ") + title
	}
	return "♡ " + title
}

func (i PhotoItem) Description() string {
	parts := make([]string, 0, 3)
	if i.Photo.Author.Name != "" {
		parts = append(parts, "by "+i.Photo.Author.Name)
	}
	if i.Photo.Width > 0 && i.Photo.Height > 0 {
		parts = append(parts, fmt.Sprintf("%d×%d", i.Photo.Width, i.Photo.Height))
	}
	if date := i.Date(); date != "" {
		parts = append(parts, date)
	}
	return strings.Join(parts, " · ")
}

// Date formats the creation date, empty when unknown
func (i PhotoItem) Date() string {
	if i.Photo.CreatedAt == nil {
		return ""
	}
	return i.Photo.CreatedAt.Format(dateLayout)
}

// WithLiked returns a copy with the liked flag set
func (i PhotoItem) WithLiked(liked bool) PhotoItem {
	if i.Photo.IsLiked != liked {
		if liked {
			i.Photo.Likes++
		} else if i.Photo.Likes > 0 {
			i.Photo.Likes--
		}
	}
	i.Photo.IsLiked = liked
	return i
}

func (i PhotoItem) FilterValue() string {
	return i.Photo.ID + " " + i.Photo.Description + " " + i.Photo.Author.Name
}
