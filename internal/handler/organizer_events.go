package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/audit"
	"github.com/snapvault/gallery-server-go/internal/middleware"
	"github.com/snapvault/gallery-server-go/internal/service"
)

// OrganizerEventsHandler is the organizer gallery surface: browsing an
// event's completed uploads and removing individual ones. Runs behind the
// auth middleware.
type OrganizerEventsHandler struct {
	gallery *service.GalleryService
}

func NewOrganizerEventsHandler(gallery *service.GalleryService) *OrganizerEventsHandler {
	return &OrganizerEventsHandler{gallery: gallery}
}

// GET /organizer/events/{eventID}/uploads
func (h *OrganizerEventsHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	page := galleryPageFrom(r)

	uploads, err := h.gallery.ListUploads(r.Context(), chi.URLParam(r, "eventID"), page.Limit, page.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"uploads": uploads,
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}

// DELETE /organizer/events/{eventID}/uploads/{uploadID}
func (h *OrganizerEventsHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	uploadID := chi.URLParam(r, "uploadID")

	if err := h.gallery.RemoveUpload(r.Context(), eventID, uploadID); err != nil {
		log.Warn().Err(err).Str("uploadId", uploadID).Msg("upload removal failed")
		writeError(w, r, err)
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	organizerID := ""
	if principal != nil {
		organizerID = principal.OrganizerID
	}
	audit.LogFromRequest(r, audit.Event{
		Type:        audit.EventUploadRemove,
		OrganizerID: organizerID,
		EventID:     eventID,
		Details:     map[string]interface{}{"uploadId": uploadID},
	})

	w.WriteHeader(http.StatusNoContent)
}
