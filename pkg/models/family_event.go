package models

import (
	"time"

	"github.com/google/uuid"
)

// FamilyEvent is an event with an optional weak reference to its organizer.
// Deleting the organizer nulls the reference instead of removing the event.
type FamilyEvent struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"event_name"`
	Date        time.Time  `json:"event_date"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"event_description,omitempty"`
	OrganizerID *uuid.UUID `json:"organizer_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FamilyEventWithOrganizer is an event joined with the organizer's name.
type FamilyEventWithOrganizer struct {
	FamilyEvent
	OrganizerName *string `json:"organizer_name,omitempty"`
}
