package model

import "time"

type Organizer struct {
	ID        string    `db:"id" json:"id"`
	Email     *string   `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UpsertOrganizerParams carries a verified identity into the organizers
// table. Email is always refreshed; an existing name is preserved.
type UpsertOrganizerParams struct {
	ID    string
	Email *string
	Name  string
}

type OrganizerSession struct {
	ID           string    `db:"id" json:"id"`
	OrganizerID  string    `db:"organizer_id" json:"organizerId"`
	TokenHash    string    `db:"token_hash" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	ExpiresAt    time.Time `db:"expires_at" json:"expiresAt"`
	LastActiveAt time.Time `db:"last_active_at" json:"lastActiveAt"`
}

type CreateOrganizerSessionParams struct {
	OrganizerID string
	TokenHash   string
	UserAgent   *string
	TTLDays     int
}

// Principal is the per-request result of auth resolution. It is never
// persisted; it exists only for the lifetime of one request.
type Principal struct {
	OrganizerID      string
	Email            string
	Name             string
	AuthMethod       AuthMethod
	SessionExpiresAt *time.Time
}
