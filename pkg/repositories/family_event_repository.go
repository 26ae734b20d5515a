package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/models"
)

// FamilyEventRepository provides data access for family events.
type FamilyEventRepository interface {
	Create(ctx context.Context, e *models.FamilyEvent) error
	ListWithOrganizer(ctx context.Context) ([]*models.FamilyEventWithOrganizer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type familyEventRepository struct{}

// NewFamilyEventRepository creates a new FamilyEventRepository.
func NewFamilyEventRepository() FamilyEventRepository {
	return &familyEventRepository{}
}

var _ FamilyEventRepository = (*familyEventRepository)(nil)

func (r *familyEventRepository) Create(ctx context.Context, e *models.FamilyEvent) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	query := `
		INSERT INTO family_events (id, event_name, event_date, location, event_description, organizer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := q.Exec(ctx, query,
		e.ID, e.Name, e.Date, e.Location, e.Description, e.OrganizerID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create family event: %w", err)
	}

	return nil
}

func (r *familyEventRepository) ListWithOrganizer(ctx context.Context) ([]*models.FamilyEventWithOrganizer, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT e.id, e.event_name, e.event_date, e.location, e.event_description, e.organizer_id,
		       e.created_at, e.updated_at, p.first_name, p.last_name
		FROM family_events e
		LEFT JOIN persons p ON e.organizer_id = p.id
		ORDER BY e.event_date DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query family events: %w", err)
	}
	defer rows.Close()

	var events []*models.FamilyEventWithOrganizer
	for rows.Next() {
		var e models.FamilyEventWithOrganizer
		var firstName, lastName *string
		err := rows.Scan(
			&e.ID, &e.Name, &e.Date, &e.Location, &e.Description, &e.OrganizerID,
			&e.CreatedAt, &e.UpdatedAt, &firstName, &lastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family event: %w", err)
		}
		if firstName != nil {
			name := *firstName
			if lastName != nil && *lastName != "" {
				name += " " + *lastName
			}
			e.OrganizerName = &name
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating family events: %w", err)
	}

	return events, nil
}

func (r *familyEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	tag, err := q.Exec(ctx, `DELETE FROM family_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete family event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
