package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoto_URLValidity(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{name: "absolute https", url: "https://images.unsplash.com/photo-1?w=200", valid: true},
		{name: "empty", url: "", valid: false},
		{name: "relative", url: "/photo-1", valid: false},
		{name: "garbage", url: "://", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Photo{LargeImageURL: tt.url, ThumbImageURL: tt.url}
			assert.Equal(t, tt.valid, p.ValidLargeURL())
			assert.Equal(t, tt.valid, p.ValidThumbURL())
		})
	}
}

func TestPhoto_ScaledHeight(t *testing.T) {
	p := Photo{Width: 4000, Height: 3000}
	assert.InDelta(t, 216.0, p.ScaledHeight(288), 0.001)
	assert.Zero(t, Photo{}.ScaledHeight(288))
	assert.Zero(t, p.ScaledHeight(0))
}
