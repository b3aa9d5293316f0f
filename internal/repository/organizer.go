package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/snapvault/gallery-server-go/internal/model"
)

type OrganizerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Organizer, error)
	// Upsert inserts the organizer on first verification, or refreshes the
	// email on conflict. A name that is already set is preserved.
	Upsert(ctx context.Context, params model.UpsertOrganizerParams) (*model.Organizer, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) OrganizerRepository
}

type organizerRepo struct {
	db sqlxDB
}

func NewOrganizerRepository(db *sqlx.DB) OrganizerRepository {
	return &organizerRepo{db: db}
}

func (r *organizerRepo) WithTx(tx *sqlx.Tx) OrganizerRepository {
	return &organizerRepo{db: tx}
}

func (r *organizerRepo) FindByID(ctx context.Context, id string) (*model.Organizer, error) {
	var organizer model.Organizer
	err := r.db.GetContext(ctx, &organizer, `
		SELECT * FROM organizers WHERE id = $1
	`, id)
	return HandleNotFound(&organizer, err)
}

func (r *organizerRepo) Upsert(ctx context.Context, params model.UpsertOrganizerParams) (*model.Organizer, error) {
	var organizer model.Organizer
	err := r.db.GetContext(ctx, &organizer, `
		INSERT INTO organizers (id, email, name)
		VALUES ($1::uuid, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET
			email = EXCLUDED.email,
			name = organizers.name,
			updated_at = now()
		RETURNING *
	`, params.ID, params.Email, params.Name)
	if err != nil {
		return nil, err
	}
	return &organizer, nil
}
