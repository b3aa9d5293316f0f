package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventSessionCreate    EventType = "session_create"
	EventSessionDelete    EventType = "session_delete"
	EventAuthFailure      EventType = "auth_failure"
	EventCSRFFailure      EventType = "csrf_failure"
	EventInvalidPin       EventType = "invalid_pin"
	EventGuestJoin        EventType = "guest_join"
	EventRateLimitExceed  EventType = "rate_limit_exceeded"
	EventUploadComplete   EventType = "upload_complete"
	EventUploadRemove     EventType = "upload_remove"
	EventStatusTransition EventType = "event_status_transition"
	EventDataCleanup      EventType = "data_cleanup"
)

type Event struct {
	Type           EventType
	OrganizerID    string
	EventID        string
	GuestSessionID string
	IP             string
	UserAgent      string
	Details        map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.OrganizerID != "" {
		logger = logger.With().Str("organizer_id", event.OrganizerID).Logger()
	}
	if event.EventID != "" {
		logger = logger.With().Str("event_id", event.EventID).Logger()
	}
	if event.GuestSessionID != "" {
		logger = logger.With().Str("guest_session_id", event.GuestSessionID).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}
	if event.UserAgent != "" {
		logger = logger.With().Str("user_agent", event.UserAgent).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

func LogFromRequest(r *http.Request, event Event) {
	event.IP = getClientIP(r)
	event.UserAgent = r.UserAgent()
	Log(r.Context(), event)
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
