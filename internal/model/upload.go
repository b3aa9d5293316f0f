package model

import "time"

type Upload struct {
	ID             string       `db:"id" json:"id"`
	EventID        string       `db:"event_id" json:"eventId"`
	GuestSessionID string       `db:"guest_session_id" json:"guestSessionId"`
	ObjectKey      string       `db:"object_key" json:"objectKey"`
	ContentType    string       `db:"content_type" json:"contentType"`
	DisplayName    *string      `db:"display_name" json:"displayName,omitempty"`
	Status         UploadStatus `db:"status" json:"status"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
	CompletedAt    *time.Time   `db:"completed_at" json:"completedAt,omitempty"`
}

type CreateUploadParams struct {
	ID             string
	EventID        string
	GuestSessionID string
	ObjectKey      string
	ContentType    string
	DisplayName    *string
}
