package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/repositories"
)

// RelationshipService exposes the relationship graph for reading and lets
// callers assert or replace a person's direct relationships outside the
// person lifecycle.
type RelationshipService interface {
	ForPerson(ctx context.Context, personID uuid.UUID) ([]*models.RelationshipWithName, error)
	All(ctx context.Context) ([]*models.RelationshipWithName, error)

	// Assert adds the given direct relationships and everything they imply.
	Assert(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error

	// Replace swaps the person's edge set for the one implied by the given
	// relationships.
	Replace(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error
}

type relationshipService struct {
	tx           database.TxManager
	relRepo      repositories.RelationshipRepository
	personRepo   repositories.PersonRepository
	marriageRepo repositories.MarriageRepository
	deriver      RelationshipDeriver
	trees        FamilyTreeService
	logger       *zap.Logger
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(
	tx database.TxManager,
	relRepo repositories.RelationshipRepository,
	personRepo repositories.PersonRepository,
	marriageRepo repositories.MarriageRepository,
	deriver RelationshipDeriver,
	trees FamilyTreeService,
	logger *zap.Logger,
) RelationshipService {
	return &relationshipService{
		tx:           tx,
		relRepo:      relRepo,
		personRepo:   personRepo,
		marriageRepo: marriageRepo,
		deriver:      deriver,
		trees:        trees,
		logger:       logger,
	}
}

func (s *relationshipService) ForPerson(ctx context.Context, personID uuid.UUID) ([]*models.RelationshipWithName, error) {
	if _, err := s.personRepo.GetByID(ctx, personID); err != nil {
		return nil, err
	}
	return s.relRepo.ListForPerson(ctx, personID)
}

func (s *relationshipService) All(ctx context.Context) ([]*models.RelationshipWithName, error) {
	return s.relRepo.ListAll(ctx)
}

func (s *relationshipService) Assert(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error {
	return s.mutate(ctx, personID, requests, s.deriver.Apply)
}

func (s *relationshipService) Replace(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest) error {
	// Stored marriages imply Spouse edges the caller need not restate; fold
	// them in so a replace cannot orphan a marriage row.
	return s.mutate(ctx, personID, requests, func(ctx context.Context, id uuid.UUID, reqs []models.RelationshipRequest) error {
		merged, err := foldMarriageSpouses(ctx, s.marriageRepo, id, reqs)
		if err != nil {
			return err
		}
		return s.deriver.Replace(ctx, id, merged)
	})
}

func (s *relationshipService) mutate(ctx context.Context, personID uuid.UUID, requests []models.RelationshipRequest, op func(context.Context, uuid.UUID, []models.RelationshipRequest) error) error {
	if personID == uuid.Nil {
		return fmt.Errorf("%w: person id is required", apperrors.ErrValidation)
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.personRepo.GetByID(ctx, personID); err != nil {
			return err
		}

		before, err := s.relRepo.ListTouching(ctx, personID)
		if err != nil {
			return err
		}

		if err := op(ctx, personID, requests); err != nil {
			return err
		}

		if err := s.trees.Invalidate(ctx, personID); err != nil {
			return err
		}
		seen := map[uuid.UUID]bool{personID: true}
		for _, rel := range before {
			other := rel.RelativeID
			if other == personID {
				other = rel.PersonID
			}
			if !seen[other] {
				seen[other] = true
				if err := s.trees.Invalidate(ctx, other); err != nil {
					return err
				}
			}
		}
		for _, req := range requests {
			if req.RelativeID != uuid.Nil && !seen[req.RelativeID] {
				seen[req.RelativeID] = true
				if err := s.trees.Invalidate(ctx, req.RelativeID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
