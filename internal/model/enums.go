package model

// EventStatus is the lifecycle state of an event. Transitions only move
// forward: draft -> active -> closed.
type EventStatus string

const (
	EventStatusDraft  EventStatus = "draft"
	EventStatusActive EventStatus = "active"
	EventStatusClosed EventStatus = "closed"
)

// IsJoinable reports whether guests may join an event in this status.
func (s EventStatus) IsJoinable() bool {
	return s == EventStatusActive
}

// AuthMethod records how an organizer principal was resolved.
type AuthMethod string

const (
	AuthMethodBearer  AuthMethod = "bearer"
	AuthMethodSession AuthMethod = "session"
)

// UploadStatus tracks an upload between URL issuance and completion.
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusCompleted UploadStatus = "completed"
)
