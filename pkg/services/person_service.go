package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/repositories"
)

// PersonInput carries the person fields supplied by callers on create and
// update.
type PersonInput struct {
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
}

// DeathInput carries the death details supplied alongside a person.
type DeathInput struct {
	Date     time.Time `json:"date"`
	Cause    *string   `json:"cause,omitempty"`
	Place    *string   `json:"place,omitempty"`
	Obituary *string   `json:"obituary,omitempty"`
}

// MarriageInput carries a marriage to an existing person, supplied alongside
// a person create or update.
type MarriageInput struct {
	SpouseID               uuid.UUID  `json:"spouse_id"`
	MarriageDate           time.Time  `json:"marriage_date"`
	DivorceDate            *time.Time `json:"divorce_date,omitempty"`
	AnniversaryCelebration bool       `json:"anniversary_celebration"`
}

// CreatePersonRequest is the full payload for creating a person together with
// their relationships, optional death record and optional marriage.
type CreatePersonRequest struct {
	Person        PersonInput                  `json:"person"`
	Relationships []models.RelationshipRequest `json:"relationships,omitempty"`
	Death         *DeathInput                  `json:"death,omitempty"`
	Marriage      *MarriageInput               `json:"marriage,omitempty"`
}

// UpdatePersonRequest is the full payload for updating a person. The
// relationship list replaces the stored edge set; a nil Death leaves the
// existing death record untouched while a non-nil one replaces it.
type UpdatePersonRequest struct {
	Person        PersonInput                  `json:"person"`
	Relationships []models.RelationshipRequest `json:"relationships"`
	Death         *DeathInput                  `json:"death,omitempty"`
	Marriage      *MarriageInput               `json:"marriage,omitempty"`
}

// PersonService owns the person lifecycle. Each mutation runs in a single
// transaction covering the person row, derived relationship edges, death
// records and marriages, so a mid-operation failure leaves no partial person.
type PersonService interface {
	Create(ctx context.Context, req *CreatePersonRequest) (*models.Person, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdatePersonRequest) (*models.Person, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.PersonDetail, error)
	List(ctx context.Context) ([]*models.Person, error)
	Recent(ctx context.Context, limit int) ([]*models.RecentPerson, error)
}

type personService struct {
	tx           database.TxManager
	personRepo   repositories.PersonRepository
	relRepo      repositories.RelationshipRepository
	deathRepo    repositories.DeathRepository
	marriageRepo repositories.MarriageRepository
	deriver      RelationshipDeriver
	trees        FamilyTreeService
	logger       *zap.Logger
}

// NewPersonService creates a new PersonService.
func NewPersonService(
	tx database.TxManager,
	personRepo repositories.PersonRepository,
	relRepo repositories.RelationshipRepository,
	deathRepo repositories.DeathRepository,
	marriageRepo repositories.MarriageRepository,
	deriver RelationshipDeriver,
	trees FamilyTreeService,
	logger *zap.Logger,
) PersonService {
	return &personService{
		tx:           tx,
		personRepo:   personRepo,
		relRepo:      relRepo,
		deathRepo:    deathRepo,
		marriageRepo: marriageRepo,
		deriver:      deriver,
		trees:        trees,
		logger:       logger,
	}
}

func (s *personService) Create(ctx context.Context, req *CreatePersonRequest) (*models.Person, error) {
	if err := validatePersonInput(&req.Person); err != nil {
		return nil, err
	}

	person := personFromInput(&req.Person)

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.personRepo.Create(ctx, person); err != nil {
			return err
		}

		if err := s.deriver.Apply(ctx, person.ID, req.Relationships); err != nil {
			return err
		}

		if req.Death != nil {
			if err := s.deathRepo.Create(ctx, deathFromInput(person.ID, req.Death)); err != nil {
				return err
			}
		}

		if req.Marriage != nil {
			if _, err := ensureMarriage(ctx, s.marriageRepo, s.relRepo, person.ID, req.Marriage); err != nil {
				return err
			}
		}

		return s.invalidateTouched(ctx, person.ID, req.Relationships, req.Marriage)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Person created",
		zap.String("person_id", person.ID.String()),
		zap.Int("relationships", len(req.Relationships)))

	return person, nil
}

func (s *personService) Update(ctx context.Context, id uuid.UUID, req *UpdatePersonRequest) (*models.Person, error) {
	if err := validatePersonInput(&req.Person); err != nil {
		return nil, err
	}

	var person *models.Person

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.personRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		person = personFromInput(&req.Person)
		person.ID = existing.ID
		person.CreatedAt = existing.CreatedAt
		if err := s.personRepo.Update(ctx, person); err != nil {
			return err
		}

		// Capture the relatives attached before the replace so their cached
		// trees can be dropped even when the edge to them goes away.
		before, err := s.relRepo.ListTouching(ctx, id)
		if err != nil {
			return err
		}

		if req.Marriage != nil {
			if _, err := ensureMarriage(ctx, s.marriageRepo, s.relRepo, id, req.Marriage); err != nil {
				return err
			}
		}

		// Marriages imply Spouse edges that the caller does not restate on
		// every update; fold them into the requested set so the replace
		// cannot strip them.
		requests, err := foldMarriageSpouses(ctx, s.marriageRepo, id, req.Relationships)
		if err != nil {
			return err
		}

		if err := s.deriver.Replace(ctx, id, requests); err != nil {
			return err
		}

		if req.Death != nil {
			if err := s.deathRepo.DeleteForPerson(ctx, id); err != nil {
				return err
			}
			if err := s.deathRepo.Create(ctx, deathFromInput(id, req.Death)); err != nil {
				return err
			}
		}

		if err := s.invalidateTouched(ctx, id, requests, req.Marriage); err != nil {
			return err
		}
		for _, rel := range before {
			other := rel.RelativeID
			if other == id {
				other = rel.PersonID
			}
			if err := s.trees.Invalidate(ctx, other); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Person updated", zap.String("person_id", id.String()))

	return person, nil
}

func (s *personService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.personRepo.GetByID(ctx, id); err != nil {
			return err
		}

		// Invalidate while the edges still exist: the ancestor walk needs
		// them to find every cached tree that embeds this person.
		touching, err := s.relRepo.ListTouching(ctx, id)
		if err != nil {
			return err
		}
		if err := s.trees.Invalidate(ctx, id); err != nil {
			return err
		}
		for _, rel := range touching {
			other := rel.RelativeID
			if other == id {
				other = rel.PersonID
			}
			if err := s.trees.Invalidate(ctx, other); err != nil {
				return err
			}
		}

		// Edges, deaths and marriages cascade with the person row.
		return s.personRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Person deleted", zap.String("person_id", id.String()))

	return nil
}

func (s *personService) Get(ctx context.Context, id uuid.UUID) (*models.PersonDetail, error) {
	person, err := s.personRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	deaths, err := s.deathRepo.ListForPerson(ctx, id)
	if err != nil {
		return nil, err
	}

	marriages, err := s.marriageRepo.ListForPerson(ctx, id)
	if err != nil {
		return nil, err
	}

	relationships, err := s.relRepo.ListForPerson(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.PersonDetail{
		Person:        *person,
		Deaths:        deaths,
		Marriages:     marriages,
		Relationships: relationships,
	}, nil
}

func (s *personService) List(ctx context.Context) ([]*models.Person, error) {
	return s.personRepo.List(ctx)
}

func (s *personService) Recent(ctx context.Context, limit int) ([]*models.RecentPerson, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.personRepo.Recent(ctx, limit)
}

// foldMarriageSpouses appends a Spouse request for every stored marriage of
// the person, deduplicated against what the caller already asked for. Every
// replace path runs through it so a relationship update can never orphan a
// marriage.
func foldMarriageSpouses(ctx context.Context, marriageRepo repositories.MarriageRepository, id uuid.UUID, requests []models.RelationshipRequest) ([]models.RelationshipRequest, error) {
	marriages, err := marriageRepo.ListForPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(marriages) == 0 {
		return requests, nil
	}

	have := make(map[uuid.UUID]bool, len(requests))
	for _, req := range requests {
		if req.Type == models.RelationshipSpouse {
			have[req.RelativeID] = true
		}
	}

	merged := make([]models.RelationshipRequest, len(requests), len(requests)+len(marriages))
	copy(merged, requests)
	for _, m := range marriages {
		spouse := m.SpouseOf(id)
		if spouse == uuid.Nil || have[spouse] {
			continue
		}
		have[spouse] = true
		merged = append(merged, models.RelationshipRequest{
			RelativeID: spouse,
			Type:       models.RelationshipSpouse,
		})
	}

	return merged, nil
}

// invalidateTouched drops cached trees for the person and everyone the
// mutation attached to them.
func (s *personService) invalidateTouched(ctx context.Context, id uuid.UUID, requests []models.RelationshipRequest, marriage *MarriageInput) error {
	if err := s.trees.Invalidate(ctx, id); err != nil {
		return err
	}
	for _, req := range requests {
		if req.RelativeID == uuid.Nil {
			continue
		}
		if err := s.trees.Invalidate(ctx, req.RelativeID); err != nil {
			return err
		}
	}
	if marriage != nil && marriage.SpouseID != uuid.Nil {
		if err := s.trees.Invalidate(ctx, marriage.SpouseID); err != nil {
			return err
		}
	}
	return nil
}

func validatePersonInput(in *PersonInput) error {
	if in.FirstName == "" {
		return fmt.Errorf("%w: first_name is required", apperrors.ErrValidation)
	}
	if in.Gender == "" {
		return fmt.Errorf("%w: gender is required", apperrors.ErrValidation)
	}
	if !models.IsValidGender(in.Gender) {
		return fmt.Errorf("%w: invalid gender %q", apperrors.ErrValidation, in.Gender)
	}
	return nil
}

func personFromInput(in *PersonInput) *models.Person {
	return &models.Person{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Nickname:        in.Nickname,
		Gender:          in.Gender,
		DateOfBirth:     in.DateOfBirth,
		PlaceOfBirth:    in.PlaceOfBirth,
		CurrentLocation: in.CurrentLocation,
		Occupation:      in.Occupation,
		Nationality:     in.Nationality,
		Phone:           in.Phone,
		Email:           in.Email,
		SocialMedia:     in.SocialMedia,
		Biography:       in.Biography,
		ProfilePicture:  in.ProfilePicture,
	}
}

func deathFromInput(personID uuid.UUID, in *DeathInput) *models.DeathRecord {
	return &models.DeathRecord{
		PersonID: personID,
		Date:     in.Date,
		Cause:    in.Cause,
		Place:    in.Place,
		Obituary: in.Obituary,
	}
}

// ensureMarriage creates the marriage for the unordered pair or updates the
// dates of the one that already exists, and makes sure the Spouse edge pair
// backs it. Shared by the person lifecycle and the marriage service so both
// paths converge on one marriage row per couple.
func ensureMarriage(ctx context.Context, marriageRepo repositories.MarriageRepository, relRepo repositories.RelationshipRepository, personID uuid.UUID, in *MarriageInput) (*models.Marriage, error) {
	if in.SpouseID == uuid.Nil {
		return nil, fmt.Errorf("%w: spouse_id is required", apperrors.ErrValidation)
	}
	if in.SpouseID == personID {
		return nil, fmt.Errorf("%w: a person cannot marry themselves", apperrors.ErrValidation)
	}

	marriage, err := marriageRepo.GetByPair(ctx, personID, in.SpouseID)
	if err != nil {
		return nil, err
	}

	if marriage != nil {
		marriage, err = marriageRepo.UpdateDates(ctx, marriage.ID, in.MarriageDate, in.DivorceDate)
		if err != nil {
			return nil, err
		}
	} else {
		marriage = &models.Marriage{
			PersonID:               personID,
			SpouseID:               in.SpouseID,
			MarriageDate:           in.MarriageDate,
			DivorceDate:            in.DivorceDate,
			AnniversaryCelebration: in.AnniversaryCelebration,
		}
		if err := marriageRepo.Create(ctx, marriage); err != nil {
			return nil, err
		}
	}

	for _, edge := range [][2]uuid.UUID{{personID, in.SpouseID}, {in.SpouseID, personID}} {
		err := relRepo.Upsert(ctx, &models.Relationship{
			PersonID:   edge[0],
			RelativeID: edge[1],
			Type:       models.RelationshipSpouse,
		})
		if err != nil {
			return nil, err
		}
	}

	return marriage, nil
}
