package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/audit"
	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/middleware"
	"github.com/snapvault/gallery-server-go/internal/service"
)

// OrganizerAuthHandler is the two-tier sign-in surface: a provider bearer
// token goes in once, a first-party session cookie comes out.
type OrganizerAuthHandler struct {
	sessions      *service.OrganizerSessionService
	auth          *middleware.AuthMiddleware
	sessionTTL    time.Duration
	secureCookies bool
}

func NewOrganizerAuthHandler(
	sessions *service.OrganizerSessionService,
	auth *middleware.AuthMiddleware,
	sessionTTL time.Duration,
	secureCookies bool,
) *OrganizerAuthHandler {
	return &OrganizerAuthHandler{
		sessions:      sessions,
		auth:          auth,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

func (h *OrganizerAuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)
	r.With(h.auth.Handler).Get("/", h.GetSession)
	r.Delete("/", h.DeleteSession)

	return r
}

// POST /organizer/auth/session
func (h *OrganizerAuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	bearer := middleware.BearerToken(r)
	if bearer == "" {
		writeError(w, r, apperrors.Unauthorized("Organizer bearer token is required"))
		return
	}

	var userAgent *string
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}

	result, err := h.sessions.Issue(r.Context(), bearer, userAgent)
	if err != nil {
		log.Warn().Err(err).Msg("organizer session exchange failed")
		writeError(w, r, err)
		return
	}

	middleware.SetOrganizerSessionCookie(w, result.SessionToken, int(h.sessionTTL.Seconds()), h.secureCookies)
	audit.LogFromRequest(r, audit.Event{
		Type:        audit.EventSessionCreate,
		OrganizerID: result.Organizer.ID,
	})

	// The token rides in the body as well as the cookie so non-browser
	// clients can hold the session without a cookie jar.
	writeJSON(w, http.StatusCreated, map[string]any{
		"organizer":    result.Organizer,
		"sessionToken": result.SessionToken,
		"expiresAt":    result.Session.ExpiresAt.Format(time.RFC3339),
	})
}

// GET /organizer/auth/session
func (h *OrganizerAuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, r, apperrors.Unauthorized("Organizer authentication is missing"))
		return
	}

	body := map[string]any{
		"organizer": map[string]any{
			"id":    principal.OrganizerID,
			"email": principal.Email,
			"name":  principal.Name,
		},
		"authMethod": principal.AuthMethod,
	}
	if principal.SessionExpiresAt != nil {
		body["expiresAt"] = principal.SessionExpiresAt.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, body)
}

// DELETE /organizer/auth/session
//
// Revoking with no cookie, or a cookie that is already gone from the store,
// still succeeds and still clears the cookie.
func (h *OrganizerAuthHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if token := middleware.CookieValue(r, middleware.OrganizerSessionCookie); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
		audit.LogFromRequest(r, audit.Event{Type: audit.EventSessionDelete})
	}

	middleware.ClearSessionCookie(w, middleware.OrganizerSessionCookie, middleware.OrganizerCookiePath)
	w.WriteHeader(http.StatusNoContent)
}
