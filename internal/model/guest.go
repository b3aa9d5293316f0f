package model

import "time"

// GuestSession binds one anonymous device (cookie) to one event. It has no
// server-side expiry; the cookie lifetime bounds it externally.
type GuestSession struct {
	ID          string    `db:"id" json:"id"`
	EventID     string    `db:"event_id" json:"eventId"`
	TokenHash   string    `db:"token_hash" json:"-"`
	DisplayName *string   `db:"display_name" json:"displayName,omitempty"`
	UploadCount int       `db:"upload_count" json:"uploadCount"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateGuestSessionParams struct {
	EventID     string
	TokenHash   string
	DisplayName *string
}
