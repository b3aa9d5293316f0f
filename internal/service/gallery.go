package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/model"
	"github.com/snapvault/gallery-server-go/internal/repository"
)

// GalleryService is the organizer-facing view of an event's uploads:
// browsing the completed gallery and moderating it.
type GalleryService struct {
	eventRepo   repository.EventRepository
	uploadRepo  repository.UploadRepository
	broker      StorageBroker
	mediaBucket string
}

func NewGalleryService(
	eventRepo repository.EventRepository,
	uploadRepo repository.UploadRepository,
	broker StorageBroker,
	mediaBucket string,
) *GalleryService {
	return &GalleryService{
		eventRepo:   eventRepo,
		uploadRepo:  uploadRepo,
		broker:      broker,
		mediaBucket: mediaBucket,
	}
}

func (s *GalleryService) ListUploads(ctx context.Context, eventID string, limit, offset int) ([]UploadWithURL, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	uploads, err := s.uploadRepo.ListByEvent(ctx, event.ID, limit, offset)
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

// RemoveUpload deletes an upload's object and row. The object goes first: a
// dangling row is visible and retriable, a dangling object is not.
func (s *GalleryService) RemoveUpload(ctx context.Context, eventID, uploadID string) error {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return err
	}

	upload, err := s.uploadRepo.FindByID(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("find upload: %w", err)
	}
	if upload == nil || upload.EventID != event.ID {
		return apperrors.NotFound("Upload")
	}

	if err := s.broker.Delete(ctx, s.mediaBucket, upload.ObjectKey); err != nil {
		return err
	}

	if err := s.uploadRepo.Delete(ctx, upload.ID); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}

	log.Info().
		Str("eventId", event.ID).
		Str("uploadId", upload.ID).
		Msg("upload removed by organizer")
	return nil
}

func (s *GalleryService) findEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, apperrors.NotFound("Event")
	}
	return event, nil
}
