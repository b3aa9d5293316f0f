package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/middleware"
	"github.com/snapvault/gallery-server-go/internal/repository"
	"github.com/snapvault/gallery-server-go/internal/sse"
)

// FeedHandler streams live upload events for one event to an organizer over
// SSE. Runs behind the auth middleware.
type FeedHandler struct {
	feed      *sse.Feed
	eventRepo repository.EventRepository
}

func NewFeedHandler(feed *sse.Feed, eventRepo repository.EventRepository) *FeedHandler {
	return &FeedHandler{
		feed:      feed,
		eventRepo: eventRepo,
	}
}

// GET /organizer/events/{eventID}/feed
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, r, apperrors.Unauthorized("Organizer authentication is missing"))
		return
	}

	eventID := chi.URLParam(r, "eventID")
	event, err := h.eventRepo.FindByID(r.Context(), eventID)
	if err != nil {
		writeError(w, r, apperrors.Database(err))
		return
	}
	if event == nil {
		writeError(w, r, apperrors.NotFound("Event"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, apperrors.Internal("Streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := h.feed.Subscribe(event.ID)
	defer h.feed.Unsubscribe(client)

	log.Info().
		Str("eventId", event.ID).
		Str("organizerId", principal.OrganizerID).
		Msg("feed connection established")

	if err := h.sendEvent(w, flusher, "connected", map[string]any{
		"eventId": event.ID,
		"status":  event.Status,
	}); err != nil {
		return
	}

	ctx := r.Context()
	heartbeat := time.NewTicker(sse.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("eventId", event.ID).Msg("feed connection closed by client")
			return

		case <-client.Done:
			log.Info().Str("eventId", event.ID).Msg("feed connection closed by server")
			return

		case feedEvent := <-client.Events:
			if err := h.sendRawEvent(w, flusher, feedEvent); err != nil {
				log.Error().Err(err).Msg("failed to send feed event")
				return
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				log.Debug().Str("eventId", event.ID).Msg("heartbeat failed, closing connection")
				return
			}
			flusher.Flush()
		}
	}
}

func (h *FeedHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return h.sendRawEvent(w, flusher, sse.Event{Type: eventType, Data: jsonData})
}

func (h *FeedHandler) sendRawEvent(w http.ResponseWriter, flusher http.Flusher, event sse.Event) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event.Type); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", event.Data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
