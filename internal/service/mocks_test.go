package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/snapvault/gallery-server-go/internal/identity"
	"github.com/snapvault/gallery-server-go/internal/model"
	"github.com/snapvault/gallery-server-go/internal/repository"
	"github.com/snapvault/gallery-server-go/internal/sse"
)

type mockVerifier struct {
	verifyFunc func(ctx context.Context, bearerToken string) (*identity.Identity, error)
}

func (m *mockVerifier) Verify(ctx context.Context, bearerToken string) (*identity.Identity, error) {
	return m.verifyFunc(ctx, bearerToken)
}

type mockOrganizerRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Organizer, error)
	upsertFunc   func(ctx context.Context, params model.UpsertOrganizerParams) (*model.Organizer, error)
}

func (m *mockOrganizerRepo) FindByID(ctx context.Context, id string) (*model.Organizer, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockOrganizerRepo) Upsert(ctx context.Context, params model.UpsertOrganizerParams) (*model.Organizer, error) {
	return m.upsertFunc(ctx, params)
}

func (m *mockOrganizerRepo) WithTx(tx *sqlx.Tx) repository.OrganizerRepository { return m }

type mockOrganizerSessionRepo struct {
	createFunc            func(ctx context.Context, params model.CreateOrganizerSessionParams) (*model.OrganizerSession, error)
	resolveAndTouchFunc   func(ctx context.Context, tokenHash string) (*model.Organizer, *model.OrganizerSession, error)
	deleteByTokenHashFunc func(ctx context.Context, tokenHash string) error
	deleteExpiredFunc     func(ctx context.Context) (int64, error)
}

func (m *mockOrganizerSessionRepo) Create(ctx context.Context, params model.CreateOrganizerSessionParams) (*model.OrganizerSession, error) {
	return m.createFunc(ctx, params)
}

func (m *mockOrganizerSessionRepo) ResolveAndTouch(ctx context.Context, tokenHash string) (*model.Organizer, *model.OrganizerSession, error) {
	return m.resolveAndTouchFunc(ctx, tokenHash)
}

func (m *mockOrganizerSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	if m.deleteByTokenHashFunc != nil {
		return m.deleteByTokenHashFunc(ctx, tokenHash)
	}
	return nil
}

func (m *mockOrganizerSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

func (m *mockOrganizerSessionRepo) WithTx(tx *sqlx.Tx) repository.OrganizerSessionRepository {
	return m
}

type mockEventRepo struct {
	findByIDFunc   func(ctx context.Context, id string) (*model.Event, error)
	findBySlugFunc func(ctx context.Context, slug string) (*model.Event, error)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockEventRepo) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return m.findBySlugFunc(ctx, slug)
}

func (m *mockEventRepo) ActivateDue(ctx context.Context, openEarlyHours, closeLateHours int) (int64, error) {
	return 0, nil
}

func (m *mockEventRepo) CloseDue(ctx context.Context, closeLateHours int) (int64, error) {
	return 0, nil
}

func (m *mockEventRepo) WithTx(tx *sqlx.Tx) repository.EventRepository { return m }

type mockGuestSessionRepo struct {
	findByTokenHashFunc         func(ctx context.Context, tokenHash string) (*model.GuestSession, error)
	findByTokenHashAndEventFunc func(ctx context.Context, tokenHash, eventID string) (*model.GuestSession, error)
	createFunc                  func(ctx context.Context, params model.CreateGuestSessionParams) (*model.GuestSession, error)
	updateDisplayNameFunc       func(ctx context.Context, id string, displayName *string) (*model.GuestSession, error)
	incrementUploadCountFunc    func(ctx context.Context, id string) error
}

func (m *mockGuestSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.GuestSession, error) {
	return m.findByTokenHashFunc(ctx, tokenHash)
}

func (m *mockGuestSessionRepo) FindByTokenHashAndEvent(ctx context.Context, tokenHash, eventID string) (*model.GuestSession, error) {
	if m.findByTokenHashAndEventFunc != nil {
		return m.findByTokenHashAndEventFunc(ctx, tokenHash, eventID)
	}
	return nil, nil
}

func (m *mockGuestSessionRepo) Create(ctx context.Context, params model.CreateGuestSessionParams) (*model.GuestSession, error) {
	return m.createFunc(ctx, params)
}

func (m *mockGuestSessionRepo) UpdateDisplayName(ctx context.Context, id string, displayName *string) (*model.GuestSession, error) {
	return m.updateDisplayNameFunc(ctx, id, displayName)
}

func (m *mockGuestSessionRepo) IncrementUploadCount(ctx context.Context, id string) error {
	if m.incrementUploadCountFunc != nil {
		return m.incrementUploadCountFunc(ctx, id)
	}
	return nil
}

func (m *mockGuestSessionRepo) WithTx(tx *sqlx.Tx) repository.GuestSessionRepository { return m }

type mockUploadRepo struct {
	findByIDFunc           func(ctx context.Context, id string) (*model.Upload, error)
	createFunc             func(ctx context.Context, params model.CreateUploadParams) (*model.Upload, error)
	markCompletedFunc      func(ctx context.Context, id string, displayName *string) (*model.Upload, error)
	deleteFunc             func(ctx context.Context, id string) error
	listByGuestSessionFunc func(ctx context.Context, guestSessionID string) ([]model.Upload, error)
	listByEventFunc        func(ctx context.Context, eventID string, limit, offset int) ([]model.Upload, error)
}

func (m *mockUploadRepo) FindByID(ctx context.Context, id string) (*model.Upload, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockUploadRepo) Create(ctx context.Context, params model.CreateUploadParams) (*model.Upload, error) {
	return m.createFunc(ctx, params)
}

func (m *mockUploadRepo) MarkCompleted(ctx context.Context, id string, displayName *string) (*model.Upload, error) {
	return m.markCompletedFunc(ctx, id, displayName)
}

func (m *mockUploadRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUploadRepo) ListByGuestSession(ctx context.Context, guestSessionID string) ([]model.Upload, error) {
	return m.listByGuestSessionFunc(ctx, guestSessionID)
}

func (m *mockUploadRepo) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]model.Upload, error) {
	if m.listByEventFunc != nil {
		return m.listByEventFunc(ctx, eventID, limit, offset)
	}
	return nil, nil
}

func (m *mockUploadRepo) WithTx(tx *sqlx.Tx) repository.UploadRepository { return m }

type mockBroker struct {
	signUploadFunc   func(ctx context.Context, bucket, objectKey, contentType string, ttl time.Duration) (string, error)
	signDownloadFunc func(ctx context.Context, bucket, objectKey string, ttl time.Duration) (string, error)
	existsFunc       func(ctx context.Context, bucket, objectKey string) (bool, error)
	deleteObjectFunc func(ctx context.Context, bucket, objectKey string) error
}

func (m *mockBroker) SignUploadURL(ctx context.Context, bucket, objectKey, contentType string, ttl time.Duration) (string, error) {
	if m.signUploadFunc != nil {
		return m.signUploadFunc(ctx, bucket, objectKey, contentType, ttl)
	}
	return "https://signed.example/put", nil
}

func (m *mockBroker) SignDownloadURL(ctx context.Context, bucket, objectKey string, ttl time.Duration) (string, error) {
	if m.signDownloadFunc != nil {
		return m.signDownloadFunc(ctx, bucket, objectKey, ttl)
	}
	return "https://signed.example/get", nil
}

func (m *mockBroker) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, bucket, objectKey)
	}
	return true, nil
}

func (m *mockBroker) Delete(ctx context.Context, bucket, objectKey string) error {
	if m.deleteObjectFunc != nil {
		return m.deleteObjectFunc(ctx, bucket, objectKey)
	}
	return nil
}

type mockFeed struct {
	published []sse.Event
}

func (m *mockFeed) Publish(ctx context.Context, eventID string, event sse.Event) error {
	m.published = append(m.published, event)
	return nil
}
