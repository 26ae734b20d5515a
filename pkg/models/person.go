package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Gender values accepted for a person.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// IsValidGender checks if the given gender is valid.
func IsValidGender(gender string) bool {
	switch gender {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Person is the identity entity of the family graph.
// Stored in the persons table.
type Person struct {
	ID              uuid.UUID       `json:"id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Nickname        *string         `json:"nickname,omitempty"`
	Gender          string          `json:"gender"`
	DateOfBirth     *time.Time      `json:"dob,omitempty"`
	PlaceOfBirth    *string         `json:"place_of_birth,omitempty"`
	CurrentLocation *string         `json:"current_location,omitempty"`
	Occupation      *string         `json:"occupation,omitempty"`
	Nationality     *string         `json:"nationality,omitempty"`
	Phone           *string         `json:"phone,omitempty"`
	Email           *string         `json:"email,omitempty"`
	SocialMedia     json.RawMessage `json:"social_media,omitempty"`
	Biography       *string         `json:"biography,omitempty"`
	ProfilePicture  *string         `json:"profile_picture,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DisplayName is the name shown for the person in relationship listings and
// tree nodes.
func (p *Person) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// PersonDetail is a person with all dependent records attached.
type PersonDetail struct {
	Person
	Deaths        []*DeathRecord          `json:"deaths"`
	Marriages     []*Marriage             `json:"marriages"`
	Relationships []*RelationshipWithName `json:"relationships"`
}

// RecentPerson is the trimmed projection used by the recent-members listing.
type RecentPerson struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	Biography      *string   `json:"biography,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
