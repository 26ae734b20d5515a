package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/repositories"
)

// RelationshipDeriver expands a caller-supplied list of direct relationship
// requests for a person into the complete edge set implied by the domain
// rules, and reconciles it against the store:
//
//  1. Every edge gets its reverse (Parent↔Child, Sibling↔Sibling,
//     Spouse↔Spouse, Grandparent↔Grandchild).
//  2. A requested parent's spouses become parents of the subject too.
//  3. Grandparent/Grandchild edges are derived from requested Parent and
//     Child edges.
//
// Both operations are idempotent and order-independent: the implied set is
// computed as a set ("ensure edge exists"), so processing order cannot change
// the outcome, and re-running with the same input produces no new writes.
type RelationshipDeriver interface {
	// Apply adds the implied edge set for the requests. Existing edges are
	// left untouched (insert-if-absent).
	Apply(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error

	// Replace reconciles the person's stored edges against the implied set of
	// the new requests: edges no longer implied are removed (including their
	// reverses), newly implied edges are added, unchanged edges are not
	// rewritten.
	Replace(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error
}

type relationshipDeriver struct {
	relRepo repositories.RelationshipRepository
	logger  *zap.Logger
}

// NewRelationshipDeriver creates a new RelationshipDeriver.
func NewRelationshipDeriver(relRepo repositories.RelationshipRepository, logger *zap.Logger) RelationshipDeriver {
	return &relationshipDeriver{
		relRepo: relRepo,
		logger:  logger,
	}
}

// edgeKey identifies a directed, typed edge independent of its row id.
type edgeKey struct {
	personID   uuid.UUID
	relativeID uuid.UUID
	relType    models.RelationshipType
}

func (d *relationshipDeriver) Apply(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error {
	desired, err := d.impliedEdges(ctx, personID, requests)
	if err != nil {
		return err
	}

	for _, edge := range sortedEdgeKeys(desired) {
		if err := d.upsert(ctx, edge); err != nil {
			return err
		}
	}

	return nil
}

func (d *relationshipDeriver) Replace(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error {
	desired, err := d.impliedEdges(ctx, personID, requests)
	if err != nil {
		return err
	}

	existing, err := d.relRepo.ListTouching(ctx, personID)
	if err != nil {
		return fmt.Errorf("failed to load existing edges: %w", err)
	}

	current := make(map[edgeKey]struct{}, len(existing))
	for _, rel := range existing {
		current[edgeKey{rel.PersonID, rel.RelativeID, rel.Type}] = struct{}{}
	}

	// Symmetric difference: remove what is no longer implied, add what is
	// newly implied, leave the intersection alone.
	for _, edge := range sortedEdgeKeys(current) {
		if _, ok := desired[edge]; ok {
			continue
		}
		if err := d.relRepo.Delete(ctx, edge.personID, edge.relativeID, edge.relType); err != nil {
			return err
		}
	}

	for _, edge := range sortedEdgeKeys(desired) {
		if _, ok := current[edgeKey{edge.personID, edge.relativeID, edge.relType}]; ok {
			continue
		}
		if err := d.upsert(ctx, edge); err != nil {
			return err
		}
	}

	return nil
}

// impliedEdges computes the full edge set implied by the requests. Every edge
// in the result touches personID, so Replace can diff it against the stored
// edges touching that person.
func (d *relationshipDeriver) impliedEdges(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) (map[edgeKey]struct{}, error) {
	direct := make([]models.RelationshipRequest, 0, len(requests))
	for _, req := range requests {
		if !req.Type.IsDirect() {
			// Documented boundary behavior: out-of-vocabulary and
			// derived-only types are skipped, not rejected.
			d.logger.Debug("Skipping unsupported relationship type",
				zap.String("person_id", personID.String()),
				zap.String("relationship_type", string(req.Type)))
			continue
		}
		if req.RelativeID == uuid.Nil || req.RelativeID == personID {
			d.logger.Debug("Skipping self or empty relationship target",
				zap.String("person_id", personID.String()))
			continue
		}
		direct = append(direct, req)
	}

	// A child of one member of a couple is a child of both: requested
	// parents' spouses are folded in as additional parents.
	expanded := make([]models.RelationshipRequest, len(direct))
	copy(expanded, direct)
	seen := make(map[edgeKey]struct{}, len(direct))
	for _, req := range direct {
		seen[edgeKey{personID, req.RelativeID, req.Type}] = struct{}{}
	}
	for _, req := range direct {
		if req.Type != models.RelationshipParent {
			continue
		}
		spouses, err := d.relRepo.ListByType(ctx, req.RelativeID, models.RelationshipSpouse)
		if err != nil {
			return nil, fmt.Errorf("failed to load spouses of parent: %w", err)
		}
		for _, spouse := range spouses {
			key := edgeKey{personID, spouse.RelativeID, models.RelationshipParent}
			if _, ok := seen[key]; ok || spouse.RelativeID == personID {
				continue
			}
			seen[key] = struct{}{}
			expanded = append(expanded, models.RelationshipRequest{
				RelativeID: spouse.RelativeID,
				Type:       models.RelationshipParent,
			})
		}
	}

	desired := make(map[edgeKey]struct{})
	addPair := func(a, b uuid.UUID, t models.RelationshipType) {
		desired[edgeKey{a, b, t}] = struct{}{}
		if reverse, ok := t.Reverse(); ok {
			desired[edgeKey{b, a, reverse}] = struct{}{}
		}
	}

	for _, req := range expanded {
		addPair(personID, req.RelativeID, req.Type)

		switch req.Type {
		case models.RelationshipParent:
			// Subject's parent's parents are the subject's grandparents.
			grandparents, err := d.relRepo.ListByType(ctx, req.RelativeID, models.RelationshipParent)
			if err != nil {
				return nil, fmt.Errorf("failed to load grandparents: %w", err)
			}
			for _, gp := range grandparents {
				if gp.RelativeID == personID {
					continue
				}
				addPair(personID, gp.RelativeID, models.RelationshipGrandchild)
			}
		case models.RelationshipChild:
			// Subject's child's children are the subject's grandchildren.
			grandchildren, err := d.relRepo.ListByType(ctx, req.RelativeID, models.RelationshipChild)
			if err != nil {
				return nil, fmt.Errorf("failed to load grandchildren: %w", err)
			}
			for _, gc := range grandchildren {
				if gc.RelativeID == personID {
					continue
				}
				addPair(personID, gc.RelativeID, models.RelationshipGrandparent)
			}
		}
	}

	return desired, nil
}

func (d *relationshipDeriver) upsert(ctx context.Context, edge edgeKey) error {
	return d.relRepo.Upsert(ctx, &models.Relationship{
		PersonID:   edge.personID,
		RelativeID: edge.relativeID,
		Type:       edge.relType,
	})
}

// sortedEdgeKeys returns the set in a stable order so writes inside a
// transaction happen in a deterministic sequence.
func sortedEdgeKeys(set map[edgeKey]struct{}) []edgeKey {
	edges := make([]edgeKey, 0, len(set))
	for edge := range set {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].personID != edges[j].personID {
			return edges[i].personID.String() < edges[j].personID.String()
		}
		if edges[i].relativeID != edges[j].relativeID {
			return edges[i].relativeID.String() < edges[j].relativeID.String()
		}
		return edges[i].relType < edges[j].relType
	})
	return edges
}
