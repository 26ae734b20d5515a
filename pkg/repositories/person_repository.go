package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/models"
)

// PersonRepository provides data access for persons.
type PersonRepository interface {
	Create(ctx context.Context, p *models.Person) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error)
	List(ctx context.Context) ([]*models.Person, error)
	Recent(ctx context.Context, limit int) ([]*models.RecentPerson, error)
	Update(ctx context.Context, p *models.Person) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type personRepository struct{}

// NewPersonRepository creates a new PersonRepository.
func NewPersonRepository() PersonRepository {
	return &personRepository{}
}

var _ PersonRepository = (*personRepository)(nil)

const personColumns = `id, first_name, last_name, nickname, gender, dob, place_of_birth,
	current_location, occupation, nationality, phone, email, social_media,
	biography, profile_picture, created_at, updated_at`

func (r *personRepository) Create(ctx context.Context, p *models.Person) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO persons (id, first_name, last_name, nickname, gender, dob, place_of_birth,
			current_location, occupation, nationality, phone, email, social_media,
			biography, profile_picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := q.Exec(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Nickname, p.Gender, p.DateOfBirth, p.PlaceOfBirth,
		p.CurrentLocation, p.Occupation, p.Nationality, p.Phone, p.Email, p.SocialMedia,
		p.Biography, p.ProfilePicture, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

func (r *personRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `SELECT ` + personColumns + ` FROM persons WHERE id = $1`

	p, err := scanPerson(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *personRepository) List(ctx context.Context) ([]*models.Person, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `SELECT ` + personColumns + ` FROM persons ORDER BY first_name, last_name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persons: %w", err)
	}

	return persons, nil
}

func (r *personRepository) Recent(ctx context.Context, limit int) ([]*models.RecentPerson, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, fmt.Errorf("no querier in context")
	}

	query := `
		SELECT id, first_name, last_name, profile_picture, biography, created_at
		FROM persons
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent persons: %w", err)
	}
	defer rows.Close()

	var persons []*models.RecentPerson
	for rows.Next() {
		var p models.RecentPerson
		err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.ProfilePicture, &p.Biography, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent person: %w", err)
		}
		persons = append(persons, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent persons: %w", err)
	}

	return persons, nil
}

func (r *personRepository) Update(ctx context.Context, p *models.Person) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	p.UpdatedAt = time.Now()

	query := `
		UPDATE persons
		SET first_name = $2, last_name = $3, nickname = $4, gender = $5, dob = $6,
		    place_of_birth = $7, current_location = $8, occupation = $9, nationality = $10,
		    phone = $11, email = $12, social_media = $13, biography = $14,
		    profile_picture = $15, updated_at = $16
		WHERE id = $1`

	tag, err := q.Exec(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Nickname, p.Gender, p.DateOfBirth,
		p.PlaceOfBirth, p.CurrentLocation, p.Occupation, p.Nationality,
		p.Phone, p.Email, p.SocialMedia, p.Biography,
		p.ProfilePicture, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes the person row. Edges, deaths and marriages referencing the
// person are removed by the storage layer's cascade rules.
func (r *personRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return fmt.Errorf("no querier in context")
	}

	tag, err := q.Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanPerson(row pgx.Row) (*models.Person, error) {
	var p models.Person

	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Nickname, &p.Gender, &p.DateOfBirth, &p.PlaceOfBirth,
		&p.CurrentLocation, &p.Occupation, &p.Nationality, &p.Phone, &p.Email, &p.SocialMedia,
		&p.Biography, &p.ProfilePicture, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan person: %w", err)
	}

	return &p, nil
}
