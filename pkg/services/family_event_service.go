package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/repositories"
)

// FamilyEventRequest is the payload for creating a family event.
type FamilyEventRequest struct {
	Name        string     `json:"event_name"`
	Date        time.Time  `json:"event_date"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"event_description,omitempty"`
	OrganizerID *uuid.UUID `json:"organizer_id,omitempty"`
}

// FamilyEventService manages family events.
type FamilyEventService interface {
	List(ctx context.Context) ([]*models.FamilyEventWithOrganizer, error)
	Create(ctx context.Context, req *FamilyEventRequest) (*models.FamilyEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type familyEventService struct {
	eventRepo repositories.FamilyEventRepository
	logger    *zap.Logger
}

// NewFamilyEventService creates a new FamilyEventService.
func NewFamilyEventService(eventRepo repositories.FamilyEventRepository, logger *zap.Logger) FamilyEventService {
	return &familyEventService{
		eventRepo: eventRepo,
		logger:    logger,
	}
}

func (s *familyEventService) List(ctx context.Context) ([]*models.FamilyEventWithOrganizer, error) {
	return s.eventRepo.ListWithOrganizer(ctx)
}

func (s *familyEventService) Create(ctx context.Context, req *FamilyEventRequest) (*models.FamilyEvent, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: event_name is required", apperrors.ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: event_date is required", apperrors.ErrValidation)
	}

	event := &models.FamilyEvent{
		Name:        req.Name,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		OrganizerID: req.OrganizerID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("Family event created", zap.String("event_id", event.ID.String()))

	return event, nil
}

func (s *familyEventService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.eventRepo.Delete(ctx, id)
}
