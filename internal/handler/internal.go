package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/audit"
	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/jobs"
)

// InternalHandler exposes manual triggers for the background jobs. These
// routes are for operators and schedulers, not end users; deploy them behind
// network-level protection.
type InternalHandler struct {
	statusJob  *jobs.EventStatusJob
	cleanupJob *jobs.CleanupJob
}

func NewInternalHandler(statusJob *jobs.EventStatusJob, cleanupJob *jobs.CleanupJob) *InternalHandler {
	return &InternalHandler{
		statusJob:  statusJob,
		cleanupJob: cleanupJob,
	}
}

func (h *InternalHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/event-status-sync", h.EventStatusSync)
	r.Post("/data-cleanup", h.DataCleanup)

	return r
}

// POST /internal/event-status-sync
func (h *InternalHandler) EventStatusSync(w http.ResponseWriter, r *http.Request) {
	activated, closed, err := h.statusJob.Sync(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("manual event status sync failed")
		writeError(w, r, apperrors.Database(err))
		return
	}

	if activated > 0 || closed > 0 {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventStatusTransition,
			Details: map[string]interface{}{"activated": activated, "closed": closed},
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activated": activated,
		"closed":    closed,
	})
}

// POST /internal/data-cleanup
func (h *InternalHandler) DataCleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.cleanupJob.RunOnce(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("manual data cleanup failed")
		writeError(w, r, apperrors.Database(err))
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventDataCleanup,
		Details: map[string]interface{}{"deletedSessions": deleted},
	})

	writeJSON(w, http.StatusOK, map[string]any{"deletedSessions": deleted})
}
