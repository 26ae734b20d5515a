package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/models"
)

// RelationshipRepository provides data access for relationship edges.
// Edge uniqueness over (person_id, relative_id, relationship_type) is
// enforced by the storage layer; Upsert is conflict-free by design.
type RelationshipRepository interface {
	Upsert(ctx context.Context, rel *models.Relationship) error
	Delete(ctx context.Context, personID, relativeID uuid.UUID, relType models.RelationshipType) error
	DeleteForPerson(ctx context.Context, personID uuid.UUID) error
	ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.RelationshipWithName, error)
	ListAll(ctx context.Context) ([]*models.RelationshipWithName, error)
	ListByType(ctx context.Context, personID uuid.UUID, relType models.RelationshipType) ([]*models.Relationship, error)
	ListTouching(ctx context.Context, personID uuid.UUID) ([]*models.Relationship, error)
	ParentIDs(ctx context.Context, personID uuid.UUID) ([]uuid.UUID, error)
}

type relationshipRepository struct{}

// NewRelationshipRepository creates a new RelationshipRepository.
func NewRelationshipRepository() RelationshipRepository {
	return &relationshipRepository{}
}

var _ RelationshipRepository = (*relationshipRepository)(nil)

func (r *relationshipRepository) Upsert(ctx context.Context, rel *models.Relationship) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now()
	}
	rel.UpdatedAt = rel.CreatedAt

	query := `
		INSERT INTO relationships (id, person_id, relative_id, relationship_type, additional_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (person_id, relative_id, relationship_type) DO NOTHING`

	_, err := q.Exec(ctx, query,
		rel.ID, rel.PersonID, rel.RelativeID, rel.Type, rel.AdditionalInfo, rel.CreatedAt, rel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert relationship: %w", err)
	}

	return nil
}

func (r *relationshipRepository) Delete(ctx context.Context, personID, relativeID uuid.UUID, relType models.RelationshipType) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	query := `DELETE FROM relationships WHERE person_id = $1 AND relative_id = $2 AND relationship_type = $3`

	_, err := q.Exec(ctx, query, personID, relativeID, relType)
	if err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}

	return nil
}

func (r *relationshipRepository) DeleteForPerson(ctx context.Context, personID uuid.UUID) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	query := `DELETE FROM relationships WHERE person_id = $1 OR relative_id = $1`

	_, err := q.Exec(ctx, query, personID)
	if err != nil {
		return fmt.Errorf("failed to delete relationships for person: %w", err)
	}

	return nil
}

func (r *relationshipRepository) ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.RelationshipWithName, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT r.id, r.person_id, r.relative_id, r.relationship_type, r.additional_info, r.created_at, r.updated_at,
		       p.first_name, p.last_name
		FROM relationships r
		JOIN persons p ON r.relative_id = p.id
		WHERE r.person_id = $1
		ORDER BY r.relationship_type, p.first_name, p.last_name`

	rows, err := q.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	return scanRelationshipsWithName(rows)
}

func (r *relationshipRepository) ListAll(ctx context.Context) ([]*models.RelationshipWithName, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT r.id, r.person_id, r.relative_id, r.relationship_type, r.additional_info, r.created_at, r.updated_at,
		       p.first_name, p.last_name
		FROM relationships r
		JOIN persons p ON r.relative_id = p.id
		ORDER BY r.person_id, r.relationship_type`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	return scanRelationshipsWithName(rows)
}

func (r *relationshipRepository) ListByType(ctx context.Context, personID uuid.UUID, relType models.RelationshipType) ([]*models.Relationship, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT id, person_id, relative_id, relationship_type, additional_info, created_at, updated_at
		FROM relationships
		WHERE person_id = $1 AND relationship_type = $2
		ORDER BY created_at`

	rows, err := q.Query(ctx, query, personID, relType)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships by type: %w", err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

func (r *relationshipRepository) ListTouching(ctx context.Context, personID uuid.UUID) ([]*models.Relationship, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT id, person_id, relative_id, relationship_type, additional_info, created_at, updated_at
		FROM relationships
		WHERE person_id = $1 OR relative_id = $1`

	rows, err := q.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships touching person: %w", err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

// ParentIDs returns the ids of people who record personID as their Child,
// i.e. the person's parents. Used by the tree cache to walk the ancestor
// chain on invalidation.
func (r *relationshipRepository) ParentIDs(ctx context.Context, personID uuid.UUID) ([]uuid.UUID, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT person_id FROM relationships
		WHERE relative_id = $1 AND relationship_type = $2`

	rows, err := q.Query(ctx, query, personID, models.RelationshipChild)
	if err != nil {
		return nil, fmt.Errorf("failed to query parent ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan parent id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent ids: %w", err)
	}

	return ids, nil
}

func scanRelationships(rows pgx.Rows) ([]*models.Relationship, error) {
	var rels []*models.Relationship
	for rows.Next() {
		var rel models.Relationship
		err := rows.Scan(
			&rel.ID, &rel.PersonID, &rel.RelativeID, &rel.Type, &rel.AdditionalInfo, &rel.CreatedAt, &rel.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rels = append(rels, &rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationships: %w", err)
	}

	return rels, nil
}

func scanRelationshipsWithName(rows pgx.Rows) ([]*models.RelationshipWithName, error) {
	var rels []*models.RelationshipWithName
	for rows.Next() {
		var rel models.RelationshipWithName
		var firstName, lastName string
		err := rows.Scan(
			&rel.ID, &rel.PersonID, &rel.RelativeID, &rel.Type, &rel.AdditionalInfo, &rel.CreatedAt, &rel.UpdatedAt,
			&firstName, &lastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rel.RelativeName = firstName
		if lastName != "" {
			rel.RelativeName = firstName + " " + lastName
		}
		rels = append(rels, &rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationships: %w", err)
	}

	return rels, nil
}
