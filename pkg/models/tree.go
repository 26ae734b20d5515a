package models

import "github.com/google/uuid"

// SpouseSummary is the lightweight spouse projection embedded in a tree node.
type SpouseSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ProfilePicture *string   `json:"profile_picture"`
}

// TreeAttributes carries the per-node metadata of a family tree node.
type TreeAttributes struct {
	ID             uuid.UUID       `json:"id"`
	ProfilePicture *string         `json:"profile_picture"`
	Spouses        []SpouseSummary `json:"spouses"`
}

// TreeNode is a computed, cached view of a person and their descendants.
// It is never persisted and never mutated once built; cache invalidation
// drops the node and the next query rebuilds it wholesale.
type TreeNode struct {
	Name       string         `json:"name"`
	Attributes TreeAttributes `json:"attributes"`
	Children   []*TreeNode    `json:"children,omitempty"`
}
