package models

import (
	"time"

	"github.com/google/uuid"
)

// RelationshipType is the closed vocabulary of edge types between persons.
type RelationshipType string

const (
	RelationshipParent      RelationshipType = "Parent"
	RelationshipChild       RelationshipType = "Child"
	RelationshipSibling     RelationshipType = "Sibling"
	RelationshipSpouse      RelationshipType = "Spouse"
	RelationshipGrandparent RelationshipType = "Grandparent"
	RelationshipGrandchild  RelationshipType = "Grandchild"
)

// reverseTypes maps each relationship type to the type recorded on the
// opposite direction of the edge.
var reverseTypes = map[RelationshipType]RelationshipType{
	RelationshipParent:      RelationshipChild,
	RelationshipChild:       RelationshipParent,
	RelationshipSibling:     RelationshipSibling,
	RelationshipSpouse:      RelationshipSpouse,
	RelationshipGrandparent: RelationshipGrandchild,
	RelationshipGrandchild:  RelationshipGrandparent,
}

// Reverse returns the semantically correct type for the reverse edge and
// whether the type is part of the vocabulary.
func (t RelationshipType) Reverse() (RelationshipType, bool) {
	r, ok := reverseTypes[t]
	return r, ok
}

// IsValid reports whether t is one of the six supported types.
func (t RelationshipType) IsValid() bool {
	_, ok := reverseTypes[t]
	return ok
}

// IsDirect reports whether callers may assert t directly.
// Grandparent/Grandchild edges are always derived, never supplied.
func (t RelationshipType) IsDirect() bool {
	switch t {
	case RelationshipParent, RelationshipChild, RelationshipSibling, RelationshipSpouse:
		return true
	}
	return false
}

// Relationship is a directed, typed edge between two persons.
// The tuple (PersonID, RelativeID, Type) is unique in storage; re-asserting
// an existing edge is a no-op.
type Relationship struct {
	ID             uuid.UUID        `json:"id"`
	PersonID       uuid.UUID        `json:"person_id"`
	RelativeID     uuid.UUID        `json:"relative_id"`
	Type           RelationshipType `json:"relationship_type"`
	AdditionalInfo *string          `json:"additional_info,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// RelationshipWithName is an edge joined with the relative's display name.
type RelationshipWithName struct {
	Relationship
	RelativeName string `json:"relative_name"`
}

// RelationshipRequest is a caller-supplied direct relationship assertion.
type RelationshipRequest struct {
	RelativeID uuid.UUID        `json:"relative_id"`
	Type       RelationshipType `json:"relationship_type"`
}
