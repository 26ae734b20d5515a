package models

import (
	"time"

	"github.com/google/uuid"
)

// DeathRecord holds a person's death details. The model treats it as at most
// one canonical record per person; updates replace the record wholesale.
type DeathRecord struct {
	ID        uuid.UUID `json:"id"`
	PersonID  uuid.UUID `json:"person_id"`
	Date      time.Time `json:"date"`
	Cause     *string   `json:"cause,omitempty"`
	Place     *string   `json:"place,omitempty"`
	Obituary  *string   `json:"obituary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
