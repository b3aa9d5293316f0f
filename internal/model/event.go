package model

import "time"

type Event struct {
	ID        string      `db:"id" json:"id"`
	Slug      string      `db:"slug" json:"slug"`
	Name      string      `db:"name" json:"name"`
	EventDate time.Time   `db:"event_date" json:"eventDate"`
	EndDate   time.Time   `db:"end_date" json:"endDate"`
	Status    EventStatus `db:"status" json:"status"`
	Pin       *string     `db:"pin" json:"-"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// RequiresPin reports whether guests must present a PIN to join.
func (e *Event) RequiresPin() bool {
	return e.Pin != nil && *e.Pin != ""
}

// EventSummary is the guest-facing view of an event; it never carries the PIN.
type EventSummary struct {
	ID          string      `json:"id"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	EventDate   time.Time   `json:"eventDate"`
	EndDate     time.Time   `json:"endDate"`
	Status      EventStatus `json:"status"`
	RequiresPin bool        `json:"requiresPin"`
}

func (e *Event) Summary() EventSummary {
	return EventSummary{
		ID:          e.ID,
		Slug:        e.Slug,
		Name:        e.Name,
		EventDate:   e.EventDate,
		EndDate:     e.EndDate,
		Status:      e.Status,
		RequiresPin: e.RequiresPin(),
	}
}
