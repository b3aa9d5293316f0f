package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/snapvault/gallery-server-go/internal/model"
)

type UploadRepository interface {
	FindByID(ctx context.Context, id string) (*model.Upload, error)
	Create(ctx context.Context, params model.CreateUploadParams) (*model.Upload, error)
	// MarkCompleted flips a pending upload to completed and stamps the guest's
	// current name tag onto it. Already-completed rows are not matched.
	MarkCompleted(ctx context.Context, id string, displayName *string) (*model.Upload, error)
	ListByGuestSession(ctx context.Context, guestSessionID string) ([]model.Upload, error)
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]model.Upload, error)
	Delete(ctx context.Context, id string) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) UploadRepository
}

type uploadRepo struct {
	db sqlxDB
}

func NewUploadRepository(db *sqlx.DB) UploadRepository {
	return &uploadRepo{db: db}
}

func (r *uploadRepo) WithTx(tx *sqlx.Tx) UploadRepository {
	return &uploadRepo{db: tx}
}

func (r *uploadRepo) FindByID(ctx context.Context, id string) (*model.Upload, error) {
	var upload model.Upload
	err := r.db.GetContext(ctx, &upload, `
		SELECT * FROM uploads WHERE id = $1
	`, id)
	return HandleNotFound(&upload, err)
}

func (r *uploadRepo) Create(ctx context.Context, params model.CreateUploadParams) (*model.Upload, error) {
	var upload model.Upload
	err := r.db.GetContext(ctx, &upload, `
		INSERT INTO uploads (id, event_id, guest_session_id, object_key, content_type, display_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING *
	`, params.ID, params.EventID, params.GuestSessionID, params.ObjectKey, params.ContentType, params.DisplayName)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepo) MarkCompleted(ctx context.Context, id string, displayName *string) (*model.Upload, error) {
	var upload model.Upload
	err := r.db.GetContext(ctx, &upload, `
		UPDATE uploads SET
			status = 'completed',
			display_name = $2,
			completed_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, displayName, time.Now())
	return HandleNotFound(&upload, err)
}

func (r *uploadRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM uploads WHERE id = $1
	`, id)
	return err
}

func (r *uploadRepo) ListByGuestSession(ctx context.Context, guestSessionID string) ([]model.Upload, error) {
	var uploads []model.Upload
	err := r.db.SelectContext(ctx, &uploads, `
		SELECT * FROM uploads
		WHERE guest_session_id = $1 AND status = 'completed'
		ORDER BY completed_at DESC
	`, guestSessionID)
	if err != nil {
		return nil, err
	}
	return uploads, nil
}

func (r *uploadRepo) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]model.Upload, error) {
	var uploads []model.Upload
	err := r.db.SelectContext(ctx, &uploads, `
		SELECT * FROM uploads
		WHERE event_id = $1 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT $2 OFFSET $3
	`, eventID, limit, offset)
	if err != nil {
		return nil, err
	}
	return uploads, nil
}
