package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/repositories"
)

// MarriageRequest records or amends a marriage between two existing persons.
type MarriageRequest struct {
	PersonID               uuid.UUID  `json:"person_id"`
	SpouseID               uuid.UUID  `json:"spouse_id"`
	MarriageDate           time.Time  `json:"marriage_date"`
	DivorceDate            *time.Time `json:"divorce_date,omitempty"`
	AnniversaryCelebration bool       `json:"anniversary_celebration"`
}

// MarriageService manages marriages independently of the person lifecycle.
// A couple holds at most one marriage row regardless of argument order, and
// every marriage is backed by exactly one Spouse edge in each direction.
type MarriageService interface {
	AddOrUpdate(ctx context.Context, req *MarriageRequest) (*models.Marriage, error)
	ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.Marriage, error)
}

type marriageService struct {
	tx           database.TxManager
	marriageRepo repositories.MarriageRepository
	relRepo      repositories.RelationshipRepository
	trees        FamilyTreeService
	logger       *zap.Logger
}

// NewMarriageService creates a new MarriageService.
func NewMarriageService(
	tx database.TxManager,
	marriageRepo repositories.MarriageRepository,
	relRepo repositories.RelationshipRepository,
	trees FamilyTreeService,
	logger *zap.Logger,
) MarriageService {
	return &marriageService{
		tx:           tx,
		marriageRepo: marriageRepo,
		relRepo:      relRepo,
		trees:        trees,
		logger:       logger,
	}
}

func (s *marriageService) AddOrUpdate(ctx context.Context, req *MarriageRequest) (*models.Marriage, error) {
	var marriage *models.Marriage

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		marriage, err = ensureMarriage(ctx, s.marriageRepo, s.relRepo, req.PersonID, &MarriageInput{
			SpouseID:               req.SpouseID,
			MarriageDate:           req.MarriageDate,
			DivorceDate:            req.DivorceDate,
			AnniversaryCelebration: req.AnniversaryCelebration,
		})
		if err != nil {
			return err
		}

		if err := s.trees.Invalidate(ctx, req.PersonID); err != nil {
			return err
		}
		return s.trees.Invalidate(ctx, req.SpouseID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Marriage recorded",
		zap.String("person_id", req.PersonID.String()),
		zap.String("spouse_id", req.SpouseID.String()))

	return marriage, nil
}

func (s *marriageService) ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.Marriage, error) {
	return s.marriageRepo.ListForPerson(ctx, personID)
}
