package models

import (
	"time"

	"github.com/google/uuid"
)

// Marriage links two persons. The pair is unordered: (A,B) and (B,A) refer to
// the same marriage and storage enforces that with a unique index over the
// sorted pair.
type Marriage struct {
	ID                     uuid.UUID  `json:"id"`
	PersonID               uuid.UUID  `json:"person_id"`
	SpouseID               uuid.UUID  `json:"spouse_id"`
	MarriageDate           time.Time  `json:"marriage_date"`
	DivorceDate            *time.Time `json:"divorce_date,omitempty"`
	AnniversaryCelebration bool       `json:"anniversary_celebration"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// SpouseOf returns the other member of the marriage, or uuid.Nil when the
// given person is not part of it.
func (m *Marriage) SpouseOf(personID uuid.UUID) uuid.UUID {
	switch personID {
	case m.PersonID:
		return m.SpouseID
	case m.SpouseID:
		return m.PersonID
	}
	return uuid.Nil
}
