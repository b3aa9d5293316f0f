package handler

import (
	"net/http"
	"strconv"
)

// Gallery pages are capped because every listed upload costs a presign call;
// a page is never allowed to grow unbounded.
const (
	defaultGalleryPageSize = 50
	maxGalleryPageSize     = 100
)

type galleryPage struct {
	Limit  int
	Offset int
}

// galleryPageFrom reads limit/offset from the query string. Anything
// missing, non-numeric, or outside the cap falls back to the default page
// size; a negative offset becomes zero.
func galleryPageFrom(r *http.Request) galleryPage {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 || limit > maxGalleryPageSize {
		limit = defaultGalleryPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return galleryPage{Limit: limit, Offset: offset}
}
