package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/snapvault/gallery-server-go/internal/model"
)

type GuestSessionRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.GuestSession, error)
	FindByTokenHashAndEvent(ctx context.Context, tokenHash, eventID string) (*model.GuestSession, error)
	Create(ctx context.Context, params model.CreateGuestSessionParams) (*model.GuestSession, error)
	UpdateDisplayName(ctx context.Context, id string, displayName *string) (*model.GuestSession, error)
	IncrementUploadCount(ctx context.Context, id string) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) GuestSessionRepository
}

type guestSessionRepo struct {
	db sqlxDB
}

func NewGuestSessionRepository(db *sqlx.DB) GuestSessionRepository {
	return &guestSessionRepo{db: db}
}

func (r *guestSessionRepo) WithTx(tx *sqlx.Tx) GuestSessionRepository {
	return &guestSessionRepo{db: tx}
}

func (r *guestSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.GuestSession, error) {
	var session model.GuestSession
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM guest_sessions WHERE token_hash = $1
	`, tokenHash)
	return HandleNotFound(&session, err)
}

func (r *guestSessionRepo) FindByTokenHashAndEvent(ctx context.Context, tokenHash, eventID string) (*model.GuestSession, error) {
	var session model.GuestSession
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM guest_sessions
		WHERE token_hash = $1 AND event_id = $2
	`, tokenHash, eventID)
	return HandleNotFound(&session, err)
}

func (r *guestSessionRepo) Create(ctx context.Context, params model.CreateGuestSessionParams) (*model.GuestSession, error) {
	var session model.GuestSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO guest_sessions (event_id, token_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.EventID, params.TokenHash, params.DisplayName)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *guestSessionRepo) UpdateDisplayName(ctx context.Context, id string, displayName *string) (*model.GuestSession, error) {
	var session model.GuestSession
	err := r.db.GetContext(ctx, &session, `
		UPDATE guest_sessions SET
			display_name = $2,
			updated_at = $3
		WHERE id = $1
		RETURNING *
	`, id, displayName, time.Now())
	return HandleNotFound(&session, err)
}

func (r *guestSessionRepo) IncrementUploadCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE guest_sessions SET
			upload_count = upload_count + 1,
			updated_at = now()
		WHERE id = $1
	`, id)
	return err
}
