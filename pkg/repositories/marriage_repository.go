package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/models"
)

// MarriageRepository provides data access for marriages. The pair is
// unordered: GetByPair finds the marriage regardless of which side the two
// ids are stored on.
type MarriageRepository interface {
	Create(ctx context.Context, m *models.Marriage) error
	GetByPair(ctx context.Context, personID, spouseID uuid.UUID) (*models.Marriage, error)
	UpdateDates(ctx context.Context, id uuid.UUID, marriageDate time.Time, divorceDate *time.Time) (*models.Marriage, error)
	ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.Marriage, error)
}

type marriageRepository struct{}

// NewMarriageRepository creates a new MarriageRepository.
func NewMarriageRepository() MarriageRepository {
	return &marriageRepository{}
}

var _ MarriageRepository = (*marriageRepository)(nil)

const marriageColumns = `id, person_id, spouse_id, marriage_date, divorce_date, anniversary_celebration, created_at, updated_at`

func (r *marriageRepository) Create(ctx context.Context, m *models.Marriage) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `
		INSERT INTO marriages (id, person_id, spouse_id, marriage_date, divorce_date, anniversary_celebration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := q.Exec(ctx, query,
		m.ID, m.PersonID, m.SpouseID, m.MarriageDate, m.DivorceDate, m.AnniversaryCelebration, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create marriage: %w", err)
	}

	return nil
}

// GetByPair returns the marriage between the two people, if any.
// Returns nil, nil when no marriage exists.
func (r *marriageRepository) GetByPair(ctx context.Context, personID, spouseID uuid.UUID) (*models.Marriage, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT ` + marriageColumns + `
		FROM marriages
		WHERE (person_id = $1 AND spouse_id = $2) OR (person_id = $2 AND spouse_id = $1)`

	m, err := scanMarriage(q.QueryRow(ctx, query, personID, spouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return m, nil
}

func (r *marriageRepository) UpdateDates(ctx context.Context, id uuid.UUID, marriageDate time.Time, divorceDate *time.Time) (*models.Marriage, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		UPDATE marriages
		SET marriage_date = $2, divorce_date = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + marriageColumns

	m, err := scanMarriage(q.QueryRow(ctx, query, id, marriageDate, divorceDate, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to update marriage: %w", err)
	}

	return m, nil
}

func (r *marriageRepository) ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.Marriage, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT ` + marriageColumns + `
		FROM marriages
		WHERE person_id = $1 OR spouse_id = $1
		ORDER BY marriage_date`

	rows, err := q.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query marriages: %w", err)
	}
	defer rows.Close()

	var marriages []*models.Marriage
	for rows.Next() {
		m, err := scanMarriage(rows)
		if err != nil {
			return nil, err
		}
		marriages = append(marriages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating marriages: %w", err)
	}

	return marriages, nil
}

func scanMarriage(row pgx.Row) (*models.Marriage, error) {
	var m models.Marriage

	err := row.Scan(
		&m.ID, &m.PersonID, &m.SpouseID, &m.MarriageDate, &m.DivorceDate,
		&m.AnniversaryCelebration, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan marriage: %w", err)
	}

	return &m, nil
}
