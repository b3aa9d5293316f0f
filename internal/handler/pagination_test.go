package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGalleryPageFrom(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		limit  int
		offset int
	}{
		{"defaults", "", defaultGalleryPageSize, 0},
		{"explicit page", "?limit=25&offset=50", 25, 50},
		{"limit above cap falls back", "?limit=500", defaultGalleryPageSize, 0},
		{"zero limit falls back", "?limit=0", defaultGalleryPageSize, 0},
		{"negative offset clamps", "?offset=-10", defaultGalleryPageSize, 0},
		{"non-numeric values fall back", "?limit=abc&offset=xyz", defaultGalleryPageSize, 0},
		{"cap itself is allowed", "?limit=100", maxGalleryPageSize, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/organizer/events/e1/uploads"+tt.query, nil)
			page := galleryPageFrom(req)
			assert.Equal(t, tt.limit, page.Limit)
			assert.Equal(t, tt.offset, page.Offset)
		})
	}
}
