package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/snapvault/gallery-server-go/internal/model"
)

type OrganizerSessionRepository interface {
	Create(ctx context.Context, params model.CreateOrganizerSessionParams) (*model.OrganizerSession, error)
	// ResolveAndTouch finds a non-expired session by token hash and updates
	// last_active_at in the same statement, so two concurrent resolutions of
	// one token cannot race between the expiry check and the activity write.
	// A missing, expired, or unknown hash all return (nil, nil, nil).
	ResolveAndTouch(ctx context.Context, tokenHash string) (*model.Organizer, *model.OrganizerSession, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) OrganizerSessionRepository
}

type organizerSessionRepo struct {
	db sqlxDB
}

func NewOrganizerSessionRepository(db *sqlx.DB) OrganizerSessionRepository {
	return &organizerSessionRepo{db: db}
}

func (r *organizerSessionRepo) WithTx(tx *sqlx.Tx) OrganizerSessionRepository {
	return &organizerSessionRepo{db: tx}
}

func (r *organizerSessionRepo) Create(ctx context.Context, params model.CreateOrganizerSessionParams) (*model.OrganizerSession, error) {
	var session model.OrganizerSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO organizer_sessions (organizer_id, token_hash, user_agent, expires_at)
		VALUES ($1::uuid, $2, $3, now() + ($4::int * INTERVAL '1 day'))
		RETURNING *
	`, params.OrganizerID, params.TokenHash, params.UserAgent, params.TTLDays)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// resolvedSessionRow flattens the touched session joined with its organizer.
type resolvedSessionRow struct {
	SessionID      string    `db:"session_id"`
	OrganizerID    string    `db:"organizer_id"`
	OrganizerEmail *string   `db:"organizer_email"`
	OrganizerName  string    `db:"organizer_name"`
	UserAgent      *string   `db:"user_agent"`
	CreatedAt      time.Time `db:"created_at"`
	ExpiresAt      time.Time `db:"expires_at"`
	LastActiveAt   time.Time `db:"last_active_at"`
}

func (r *organizerSessionRepo) ResolveAndTouch(ctx context.Context, tokenHash string) (*model.Organizer, *model.OrganizerSession, error) {
	var row resolvedSessionRow
	err := r.db.GetContext(ctx, &row, `
		WITH touched AS (
			UPDATE organizer_sessions
			SET last_active_at = now()
			WHERE token_hash = $1
			  AND expires_at > now()
			RETURNING id, organizer_id, user_agent, created_at, expires_at, last_active_at
		)
		SELECT
			t.id AS session_id,
			t.organizer_id,
			o.email AS organizer_email,
			o.name AS organizer_name,
			t.user_agent,
			t.created_at,
			t.expires_at,
			t.last_active_at
		FROM touched t
		INNER JOIN organizers o ON o.id = t.organizer_id
		LIMIT 1
	`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	organizer := &model.Organizer{
		ID:    row.OrganizerID,
		Email: row.OrganizerEmail,
		Name:  row.OrganizerName,
	}
	session := &model.OrganizerSession{
		ID:           row.SessionID,
		OrganizerID:  row.OrganizerID,
		TokenHash:    tokenHash,
		UserAgent:    row.UserAgent,
		CreatedAt:    row.CreatedAt,
		ExpiresAt:    row.ExpiresAt,
		LastActiveAt: row.LastActiveAt,
	}
	return organizer, session, nil
}

func (r *organizerSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM organizer_sessions WHERE token_hash = $1
	`, tokenHash)
	return err
}

func (r *organizerSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM organizer_sessions WHERE expires_at < now()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
