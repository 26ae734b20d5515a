package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/repositories"
)

// FamilyTreeService builds the rooted, spouse-annotated descendant tree for a
// person and caches the result per person id.
//
// Consistency contract: every mutation that changes edges must call
// Invalidate for the mutated person before the next read is served. Only
// ancestors embed a descendant's subtree, so invalidating the person and
// walking the Parent chain upward covers every cached tree that could contain
// the change.
type FamilyTreeService interface {
	// Build returns the cached tree for the person, building and caching it
	// on a miss. A missing person yields nil, not an error.
	Build(ctx context.Context, personID uuid.UUID) (*models.TreeNode, error)

	// Invalidate drops the person's cached node and every ancestor's. The
	// walk carries a visited set so cyclic or malformed ancestry terminates.
	Invalidate(ctx context.Context, personID uuid.UUID) error
}

type familyTreeService struct {
	personRepo repositories.PersonRepository
	relRepo    repositories.RelationshipRepository
	cache      TreeCache
	logger     *zap.Logger
}

// NewFamilyTreeService creates a new FamilyTreeService with the given cache
// backend.
func NewFamilyTreeService(
	personRepo repositories.PersonRepository,
	relRepo repositories.RelationshipRepository,
	cache TreeCache,
	logger *zap.Logger,
) FamilyTreeService {
	return &familyTreeService{
		personRepo: personRepo,
		relRepo:    relRepo,
		cache:      cache,
		logger:     logger,
	}
}

func (s *familyTreeService) Build(ctx context.Context, personID uuid.UUID) (*models.TreeNode, error) {
	if personID == uuid.Nil {
		return nil, nil
	}
	return s.build(ctx, personID, make(map[uuid.UUID]bool))
}

func (s *familyTreeService) build(ctx context.Context, personID uuid.UUID, visited map[uuid.UUID]bool) (*models.TreeNode, error) {
	if visited[personID] {
		return nil, nil
	}
	visited[personID] = true

	if node, ok := s.cache.Get(ctx, personID); ok {
		return node, nil
	}

	person, err := s.personRepo.GetByID(ctx, personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Broken edge: the branch is skipped, not fatal.
			return nil, nil
		}
		return nil, err
	}

	spouseEdges, err := s.relRepo.ListByType(ctx, personID, models.RelationshipSpouse)
	if err != nil {
		return nil, fmt.Errorf("failed to load spouse edges: %w", err)
	}

	spouses := make([]models.SpouseSummary, 0, len(spouseEdges))
	for _, edge := range spouseEdges {
		spouse, err := s.personRepo.GetByID(ctx, edge.RelativeID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		spouses = append(spouses, models.SpouseSummary{
			ID:             spouse.ID,
			Name:           spouse.DisplayName(),
			ProfilePicture: spouse.ProfilePicture,
		})
	}

	childEdges, err := s.relRepo.ListByType(ctx, personID, models.RelationshipChild)
	if err != nil {
		return nil, fmt.Errorf("failed to load child edges: %w", err)
	}

	var children []*models.TreeNode
	for _, edge := range childEdges {
		child, err := s.build(ctx, edge.RelativeID, visited)
		if err != nil {
			return nil, err
		}
		if child != nil {
			children = append(children, child)
		}
	}

	node := &models.TreeNode{
		Name: person.DisplayName(),
		Attributes: models.TreeAttributes{
			ID:             person.ID,
			ProfilePicture: person.ProfilePicture,
			Spouses:        spouses,
		},
		Children: children,
	}

	s.cache.Set(ctx, personID, node)
	return node, nil
}

func (s *familyTreeService) Invalidate(ctx context.Context, personID uuid.UUID) error {
	visited := make(map[uuid.UUID]bool)
	stack := []uuid.UUID{personID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		s.cache.Delete(ctx, current)

		parents, err := s.relRepo.ParentIDs(ctx, current)
		if err != nil {
			return fmt.Errorf("failed to walk ancestors for invalidation: %w", err)
		}
		stack = append(stack, parents...)
	}

	return nil
}
