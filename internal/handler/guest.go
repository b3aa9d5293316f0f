package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/audit"
	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/middleware"
	"github.com/snapvault/gallery-server-go/internal/service"
)

type GuestHandler struct {
	guests        *service.GuestService
	joinLimit     *middleware.JoinRateLimitMiddleware
	secureCookies bool
}

func NewGuestHandler(guests *service.GuestService, joinLimit *middleware.JoinRateLimitMiddleware, secureCookies bool) *GuestHandler {
	return &GuestHandler{
		guests:        guests,
		joinLimit:     joinLimit,
		secureCookies: secureCookies,
	}
}

func (h *GuestHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/lookup-event", h.LookupEvent)
	r.With(h.joinLimit.Handler).Post("/join", h.Join)
	r.Get("/my-session", h.MySession)
	r.Patch("/my-session", h.UpdateMySession)
	r.Post("/create-upload", h.CreateUpload)
	r.Post("/complete-upload", h.CompleteUpload)
	r.Get("/my-uploads", h.MyUploads)

	return r
}

type lookupEventRequest struct {
	EventSlug string `json:"eventSlug"`
}

// POST /guest/lookup-event
func (h *GuestHandler) LookupEvent(w http.ResponseWriter, r *http.Request) {
	var req lookupEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.guests.LookupEvent(r.Context(), req.EventSlug)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"event": summary})
}

type joinRequest struct {
	EventSlug   string `json:"eventSlug"`
	Pin         string `json:"pin"`
	DisplayName string `json:"displayName"`
}

// POST /guest/join
func (h *GuestHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.guests.Join(r.Context(), service.JoinParams{
		EventSlug:     req.EventSlug,
		Pin:           req.Pin,
		DisplayName:   req.DisplayName,
		ExistingToken: middleware.CookieValue(r, middleware.DeviceSessionCookie),
	})
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeInvalidPin {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventInvalidPin})
		}
		writeError(w, r, err)
		return
	}

	// Always refresh the cookie; a reused session gets its 7 days back.
	middleware.SetDeviceSessionCookie(w, result.SessionToken, h.secureCookies)
	audit.LogFromRequest(r, audit.Event{
		Type:           audit.EventGuestJoin,
		EventID:        result.Event.ID,
		GuestSessionID: result.Session.ID,
		Details:        map[string]interface{}{"reused": result.Reused},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"session": result.Session,
		"event":   result.Event,
		"reused":  result.Reused,
	})
}

// GET /guest/my-session
func (h *GuestHandler) MySession(w http.ResponseWriter, r *http.Request) {
	result, err := h.guests.GetMySession(r.Context(), middleware.CookieValue(r, middleware.DeviceSessionCookie))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": result.Session,
		"event":   result.Event,
	})
}

type updateSessionRequest struct {
	DisplayName string `json:"displayName"`
}

// PATCH /guest/my-session
func (h *GuestHandler) UpdateMySession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.guests.UpdateDisplayName(r.Context(), middleware.CookieValue(r, middleware.DeviceSessionCookie), req.DisplayName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

type createUploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// POST /guest/create-upload
func (h *GuestHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	var req createUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.guests.CreateUpload(r.Context(), middleware.CookieValue(r, middleware.DeviceSessionCookie), service.CreateUploadParams{
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		log.Warn().Err(err).Msg("create upload failed")
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type completeUploadRequest struct {
	UploadID string `json:"uploadId"`
}

// POST /guest/complete-upload
func (h *GuestHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	var req completeUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UploadID == "" {
		writeError(w, r, apperrors.MissingRequired("uploadId"))
		return
	}

	upload, err := h.guests.CompleteUpload(r.Context(), middleware.CookieValue(r, middleware.DeviceSessionCookie), req.UploadID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:           audit.EventUploadComplete,
		EventID:        upload.EventID,
		GuestSessionID: upload.GuestSessionID,
	})

	writeJSON(w, http.StatusOK, map[string]any{"upload": upload})
}

// GET /guest/my-uploads
func (h *GuestHandler) MyUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.guests.MyUploads(r.Context(), middleware.CookieValue(r, middleware.DeviceSessionCookie))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"uploads": uploads})
}
