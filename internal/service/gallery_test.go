package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/model"
)

func newGalleryService(events *mockEventRepo, uploads *mockUploadRepo, broker *mockBroker) *GalleryService {
	return NewGalleryService(events, uploads, broker, testBucket)
}

func TestListUploads(t *testing.T) {
	t.Run("pages through completed uploads with download urls", func(t *testing.T) {
		uploads := &mockUploadRepo{
			listByEventFunc: func(ctx context.Context, eventID string, limit, offset int) ([]model.Upload, error) {
				assert.Equal(t, "event-1", eventID)
				assert.Equal(t, 25, limit)
				assert.Equal(t, 50, offset)
				return []model.Upload{
					{ID: "up-1", ObjectKey: "events/event-1/up-1.jpg", Status: model.UploadStatusCompleted},
				}, nil
			},
		}
		broker := &mockBroker{
			signDownloadFunc: func(ctx context.Context, bucket, objectKey string, ttl time.Duration) (string, error) {
				return "https://signed.example/" + objectKey, nil
			},
		}
		svc := newGalleryService(eventRepoWith(activeEvent()), uploads, broker)

		result, err := svc.ListUploads(context.Background(), "event-1", 25, 50)
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "https://signed.example/events/event-1/up-1.jpg", result[0].DownloadURL)
	})

	t.Run("unknown event is a 404", func(t *testing.T) {
		svc := newGalleryService(eventRepoWith(nil), &mockUploadRepo{}, &mockBroker{})

		_, err := svc.ListUploads(context.Background(), "missing", 50, 0)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestRemoveUpload(t *testing.T) {
	upload := &model.Upload{ID: "up-1", EventID: "event-1", ObjectKey: "events/event-1/up-1.jpg"}

	t.Run("deletes the object before the row", func(t *testing.T) {
		var order []string
		uploads := &mockUploadRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.Upload, error) {
				return upload, nil
			},
			deleteFunc: func(ctx context.Context, id string) error {
				order = append(order, "row")
				assert.Equal(t, "up-1", id)
				return nil
			},
		}
		broker := &mockBroker{
			deleteObjectFunc: func(ctx context.Context, bucket, objectKey string) error {
				order = append(order, "object")
				assert.Equal(t, upload.ObjectKey, objectKey)
				return nil
			},
		}
		svc := newGalleryService(eventRepoWith(activeEvent()), uploads, broker)

		require.NoError(t, svc.RemoveUpload(context.Background(), "event-1", "up-1"))
		assert.Equal(t, []string{"object", "row"}, order)
	})

	t.Run("upload from another event is not found", func(t *testing.T) {
		foreign := *upload
		foreign.EventID = "other-event"
		uploads := &mockUploadRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.Upload, error) {
				return &foreign, nil
			},
			deleteFunc: func(ctx context.Context, id string) error {
				t.Fatal("row must not be deleted")
				return nil
			},
		}
		svc := newGalleryService(eventRepoWith(activeEvent()), uploads, &mockBroker{})

		err := svc.RemoveUpload(context.Background(), "event-1", "up-1")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("storage failure leaves the row in place", func(t *testing.T) {
		uploads := &mockUploadRepo{
			findByIDFunc: func(ctx context.Context, id string) (*model.Upload, error) {
				return upload, nil
			},
			deleteFunc: func(ctx context.Context, id string) error {
				t.Fatal("row must survive a failed object delete")
				return nil
			},
		}
		broker := &mockBroker{
			deleteObjectFunc: func(ctx context.Context, bucket, objectKey string) error {
				return apperrors.StorageDeleteFailed(assert.AnError)
			},
		}
		svc := newGalleryService(eventRepoWith(activeEvent()), uploads, broker)

		err := svc.RemoveUpload(context.Background(), "event-1", "up-1")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStorageDeleteFailed, apperrors.GetCode(err))
	})
}
