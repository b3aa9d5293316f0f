package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/model"
	"github.com/snapvault/gallery-server-go/internal/repository"
	"github.com/snapvault/gallery-server-go/internal/sse"
	"github.com/snapvault/gallery-server-go/internal/util"
)

// Upload capability URLs are deliberately shorter-lived than the configured
// default used for gallery display URLs.
const uploadSignTTL = 10 * time.Minute

// StorageBroker is the slice of the capability URL broker the services use.
type StorageBroker interface {
	SignUploadURL(ctx context.Context, bucket, objectKey, contentType string, ttl time.Duration) (string, error)
	SignDownloadURL(ctx context.Context, bucket, objectKey string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, bucket, objectKey string) (bool, error)
	Delete(ctx context.Context, bucket, objectKey string) error
}

// FeedPublisher pushes live gallery events to subscribed organizers.
type FeedPublisher interface {
	Publish(ctx context.Context, eventID string, event sse.Event) error
}

type JoinParams struct {
	EventSlug   string
	Pin         string
	DisplayName string
	// ExistingToken is the raw device-session token from the request cookie,
	// if any. A matching session for the same event is reused.
	ExistingToken string
}

type JoinResult struct {
	SessionToken string
	Reused       bool
	Session      *model.GuestSession
	Event        model.EventSummary
}

type MySessionResult struct {
	Session *model.GuestSession
	Event   model.EventSummary
}

type CreateUploadParams struct {
	FileName    string
	ContentType string
}

type CreateUploadResult struct {
	UploadID         string `json:"uploadId"`
	ObjectKey        string `json:"objectKey"`
	UploadURL        string `json:"uploadUrl"`
	ExpiresInSeconds int    `json:"expiresIn"`
}

type UploadWithURL struct {
	model.Upload
	DownloadURL string `json:"downloadUrl"`
}

type GuestService struct {
	eventRepo   repository.EventRepository
	guestRepo   repository.GuestSessionRepository
	uploadRepo  repository.UploadRepository
	broker      StorageBroker
	feed        FeedPublisher
	mediaBucket string
}

func NewGuestService(
	eventRepo repository.EventRepository,
	guestRepo repository.GuestSessionRepository,
	uploadRepo repository.UploadRepository,
	broker StorageBroker,
	feed FeedPublisher,
	mediaBucket string,
) *GuestService {
	return &GuestService{
		eventRepo:   eventRepo,
		guestRepo:   guestRepo,
		uploadRepo:  uploadRepo,
		broker:      broker,
		feed:        feed,
		mediaBucket: mediaBucket,
	}
}

func (s *GuestService) LookupEvent(ctx context.Context, slug string) (*model.EventSummary, error) {
	event, err := s.findJoinTarget(ctx, slug)
	if err != nil {
		return nil, err
	}
	summary := event.Summary()
	return &summary, nil
}

// Join validates the event and PIN, then creates a device session or reuses
// the one the device already holds for this event. No session is created on
// a PIN failure.
func (s *GuestService) Join(ctx context.Context, params JoinParams) (*JoinResult, error) {
	event, err := s.findJoinTarget(ctx, params.EventSlug)
	if err != nil {
		return nil, err
	}
	if !event.Status.IsJoinable() {
		return nil, apperrors.EventNotJoinable(string(event.Status))
	}

	if event.RequiresPin() && !util.CheckPin(params.Pin, *event.Pin) {
		log.Warn().Str("eventId", event.ID).Msg("guest join rejected: wrong or missing pin")
		return nil, apperrors.InvalidPin()
	}

	displayName, err := normalizeDisplayName(params.DisplayName)
	if err != nil {
		return nil, err
	}

	if params.ExistingToken != "" {
		existing, err := s.guestRepo.FindByTokenHashAndEvent(ctx, util.HashToken(params.ExistingToken), event.ID)
		if err != nil {
			return nil, fmt.Errorf("find guest session: %w", err)
		}
		if existing != nil {
			if displayName != nil {
				existing, err = s.guestRepo.UpdateDisplayName(ctx, existing.ID, displayName)
				if err != nil {
					return nil, fmt.Errorf("update display name: %w", err)
				}
			}
			return &JoinResult{
				SessionToken: params.ExistingToken,
				Reused:       true,
				Session:      existing,
				Event:        event.Summary(),
			}, nil
		}
	}

	token, err := util.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session, err := s.guestRepo.Create(ctx, model.CreateGuestSessionParams{
		EventID:     event.ID,
		TokenHash:   util.HashToken(token),
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("create guest session: %w", err)
	}

	log.Info().
		Str("eventId", event.ID).
		Str("guestSessionId", session.ID).
		Msg("guest joined event")

	return &JoinResult{
		SessionToken: token,
		Session:      session,
		Event:        event.Summary(),
	}, nil
}

func (s *GuestService) GetMySession(ctx context.Context, sessionToken string) (*MySessionResult, error) {
	session, event, err := s.resolve(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	return &MySessionResult{
		Session: session,
		Event:   event.Summary(),
	}, nil
}

// UpdateDisplayName sets or clears the guest's name tag. It attaches to
// subsequent uploads, never retroactively.
func (s *GuestService) UpdateDisplayName(ctx context.Context, sessionToken, displayName string) (*model.GuestSession, error) {
	session, _, err := s.resolve(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	updated, err := s.guestRepo.UpdateDisplayName(ctx, session.ID, normalized)
	if err != nil {
		return nil, fmt.Errorf("update display name: %w", err)
	}
	if updated == nil {
		return nil, apperrors.Unauthorized("Guest session is missing or invalid")
	}
	return updated, nil
}

// CreateUpload reserves an upload row and returns a presigned PUT URL so the
// client pushes bytes straight to object storage.
func (s *GuestService) CreateUpload(ctx context.Context, sessionToken string, params CreateUploadParams) (*CreateUploadResult, error) {
	session, event, err := s.resolve(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if !event.Status.IsJoinable() {
		return nil, apperrors.EventNotJoinable(string(event.Status))
	}

	contentType := strings.ToLower(strings.TrimSpace(params.ContentType))
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return nil, apperrors.InvalidInput("contentType", "only image and video uploads are accepted")
	}

	uploadID := uuid.NewString()
	objectKey := buildObjectKey(event.ID, uploadID, params.FileName)

	uploadURL, err := s.broker.SignUploadURL(ctx, s.mediaBucket, objectKey, contentType, uploadSignTTL)
	if err != nil {
		return nil, err
	}

	if _, err := s.uploadRepo.Create(ctx, model.CreateUploadParams{
		ID:             uploadID,
		EventID:        event.ID,
		GuestSessionID: session.ID,
		ObjectKey:      objectKey,
		ContentType:    contentType,
		DisplayName:    session.DisplayName,
	}); err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}

	return &CreateUploadResult{
		UploadID:         uploadID,
		ObjectKey:        objectKey,
		UploadURL:        uploadURL,
		ExpiresInSeconds: int(uploadSignTTL.Seconds()),
	}, nil
}

// CompleteUpload verifies the object actually landed in storage, marks the
// row completed with the guest's current name tag, and publishes a live
// feed entry. Completing an already-completed upload is a no-op.
func (s *GuestService) CompleteUpload(ctx context.Context, sessionToken, uploadID string) (*model.Upload, error) {
	session, event, err := s.resolve(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	upload, err := s.uploadRepo.FindByID(ctx, uploadID)
	if err != nil {
		return nil, fmt.Errorf("find upload: %w", err)
	}
	if upload == nil || upload.GuestSessionID != session.ID {
		return nil, apperrors.NotFound("Upload")
	}
	if upload.Status == model.UploadStatusCompleted {
		return upload, nil
	}

	exists, err := s.broker.Exists(ctx, s.mediaBucket, upload.ObjectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ValidationError("Uploaded object was not found in storage")
	}

	completed, err := s.uploadRepo.MarkCompleted(ctx, upload.ID, session.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("mark upload completed: %w", err)
	}
	if completed == nil {
		// Lost a race with a concurrent completion; the row is already done.
		return s.uploadRepo.FindByID(ctx, uploadID)
	}

	if err := s.guestRepo.IncrementUploadCount(ctx, session.ID); err != nil {
		log.Warn().Err(err).Str("guestSessionId", session.ID).Msg("failed to bump upload count")
	}

	s.publishUploadEvent(ctx, event.ID, completed)

	return completed, nil
}

func (s *GuestService) MyUploads(ctx context.Context, sessionToken string) ([]UploadWithURL, error) {
	session, _, err := s.resolve(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	uploads, err := s.uploadRepo.ListByGuestSession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	result := make([]UploadWithURL, 0, len(uploads))
	for _, upload := range uploads {
		url, err := s.broker.SignDownloadURL(ctx, s.mediaBucket, upload.ObjectKey, 0)
		if err != nil {
			return nil, err
		}
		result = append(result, UploadWithURL{Upload: upload, DownloadURL: url})
	}
	return result, nil
}

func (s *GuestService) findJoinTarget(ctx context.Context, slug string) (*model.Event, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !util.IsValidSlug(slug) {
		return nil, apperrors.InvalidInput("event_slug", "must be a lowercase hyphenated slug")
	}

	event, err := s.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, apperrors.NotFound("Event")
	}
	return event, nil
}

func (s *GuestService) resolve(ctx context.Context, sessionToken string) (*model.GuestSession, *model.Event, error) {
	if sessionToken == "" {
		return nil, nil, apperrors.Unauthorized("Guest session cookie is missing")
	}

	session, err := s.guestRepo.FindByTokenHash(ctx, util.HashToken(sessionToken))
	if err != nil {
		return nil, nil, fmt.Errorf("find guest session: %w", err)
	}
	if session == nil {
		return nil, nil, apperrors.Unauthorized("Guest session is missing or invalid")
	}

	event, err := s.eventRepo.FindByID(ctx, session.EventID)
	if err != nil {
		return nil, nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, nil, apperrors.NotFound("Event")
	}
	return session, event, nil
}

func (s *GuestService) publishUploadEvent(ctx context.Context, eventID string, upload *model.Upload) {
	data, err := json.Marshal(map[string]any{
		"uploadId":    upload.ID,
		"contentType": upload.ContentType,
		"displayName": upload.DisplayName,
		"completedAt": upload.CompletedAt,
	})
	if err != nil {
		return
	}

	if err := s.feed.Publish(ctx, eventID, sse.Event{Type: "upload_completed", Data: data}); err != nil {
		log.Warn().Err(err).Str("eventId", eventID).Msg("failed to publish feed event")
	}
}

func normalizeDisplayName(raw string) (*string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if !util.IsValidDisplayName(trimmed) {
		return nil, apperrors.InvalidInput("display_name", "must be 50 characters or fewer")
	}
	return &trimmed, nil
}

func buildObjectKey(eventID, uploadID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("events/%s/%s%s", eventID, uploadID, ext)
}
