package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/models"
)

// DeathRepository provides data access for death records.
type DeathRepository interface {
	Create(ctx context.Context, d *models.DeathRecord) error
	ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.DeathRecord, error)
	DeleteForPerson(ctx context.Context, personID uuid.UUID) error
}

type deathRepository struct{}

// NewDeathRepository creates a new DeathRepository.
func NewDeathRepository() DeathRepository {
	return &deathRepository{}
}

var _ DeathRepository = (*deathRepository)(nil)

func (r *deathRepository) Create(ctx context.Context, d *models.DeathRecord) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO deaths (id, person_id, date, cause, place, obituary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := q.Exec(ctx, query,
		d.ID, d.PersonID, d.Date, d.Cause, d.Place, d.Obituary, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create death record: %w", err)
	}

	return nil
}

func (r *deathRepository) ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.DeathRecord, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT id, person_id, date, cause, place, obituary, created_at, updated_at
		FROM deaths
		WHERE person_id = $1
		ORDER BY date`

	rows, err := q.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query death records: %w", err)
	}
	defer rows.Close()

	var deaths []*models.DeathRecord
	for rows.Next() {
		var d models.DeathRecord
		err := rows.Scan(&d.ID, &d.PersonID, &d.Date, &d.Cause, &d.Place, &d.Obituary, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan death record: %w", err)
		}
		deaths = append(deaths, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating death records: %w", err)
	}

	return deaths, nil
}

func (r *deathRepository) DeleteForPerson(ctx context.Context, personID uuid.UUID) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	_, err := q.Exec(ctx, `DELETE FROM deaths WHERE person_id = $1`, personID)
	if err != nil {
		return fmt.Errorf("failed to delete death records: %w", err)
	}

	return nil
}
