package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/snapvault/gallery-server-go/internal/model"
)

type EventRepository interface {
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindBySlug(ctx context.Context, slug string) (*model.Event, error)
	// ActivateDue moves draft events whose activation window contains now to
	// active. Returns the number of transitioned rows.
	ActivateDue(ctx context.Context, openEarlyHours, closeLateHours int) (int64, error)
	// CloseDue moves draft or active events past their close threshold to
	// closed. Closed is terminal; rows already closed are never matched.
	CloseDue(ctx context.Context, closeLateHours int) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) EventRepository
}

type eventRepo struct {
	db sqlxDB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) WithTx(tx *sqlx.Tx) EventRepository {
	return &eventRepo{db: tx}
}

func (r *eventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.GetContext(ctx, &event, `
		SELECT * FROM events WHERE id = $1
	`, id)
	return HandleNotFound(&event, err)
}

func (r *eventRepo) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	var event model.Event
	err := r.db.GetContext(ctx, &event, `
		SELECT * FROM events WHERE slug = $1
	`, slug)
	return HandleNotFound(&event, err)
}

// The activation window opens openEarlyHours before event_date and closes at
// the same threshold CloseDue uses, so an event past its window never
// activates; the close update picks it up from draft directly.
func (r *eventRepo) ActivateDue(ctx context.Context, openEarlyHours, closeLateHours int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET status = 'active', updated_at = now()
		WHERE status = 'draft'
		  AND now() >= (event_date - ($1::int * INTERVAL '1 hour'))
		  AND now() <= (end_date + INTERVAL '1 day' + ($2::int * INTERVAL '1 hour'))
	`, openEarlyHours, closeLateHours)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *eventRepo) CloseDue(ctx context.Context, closeLateHours int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET status = 'closed', updated_at = now()
		WHERE status IN ('draft', 'active')
		  AND now() > (end_date + INTERVAL '1 day' + ($1::int * INTERVAL '1 hour'))
	`, closeLateHours)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
