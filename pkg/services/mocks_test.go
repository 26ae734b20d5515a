package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/repositories"
)

// fakeTxManager runs the function directly; there is no real transaction in
// unit tests.
type fakeTxManager struct {
	calls int
	err   error
}

func (f *fakeTxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type memPersonRepo struct {
	persons map[uuid.UUID]*models.Person
}

func newMemPersonRepo() *memPersonRepo {
	return &memPersonRepo{persons: make(map[uuid.UUID]*models.Person)}
}

var _ repositories.PersonRepository = (*memPersonRepo)(nil)

func (r *memPersonRepo) Create(ctx context.Context, p *models.Person) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.persons[p.ID] = &cp
	return nil
}

func (r *memPersonRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	p, ok := r.persons[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPersonRepo) List(ctx context.Context) ([]*models.Person, error) {
	var out []*models.Person
	for _, p := range r.persons {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPersonRepo) Recent(ctx context.Context, limit int) ([]*models.RecentPerson, error) {
	var out []*models.RecentPerson
	for _, p := range r.persons {
		if len(out) >= limit {
			break
		}
		out = append(out, &models.RecentPerson{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			CreatedAt: p.CreatedAt,
		})
	}
	return out, nil
}

func (r *memPersonRepo) Update(ctx context.Context, p *models.Person) error {
	if _, ok := r.persons[p.ID]; !ok {
		return apperrors.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.persons[p.ID] = &cp
	return nil
}

func (r *memPersonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.persons[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.persons, id)
	return nil
}

func (r *memPersonRepo) mustAdd(first, last string) uuid.UUID {
	p := &models.Person{FirstName: first, LastName: last, Gender: models.GenderOther}
	_ = r.Create(context.Background(), p)
	return p.ID
}

type memRelRepo struct {
	edges map[edgeKey]*models.Relationship
	names map[uuid.UUID]string
}

func newMemRelRepo() *memRelRepo {
	return &memRelRepo{
		edges: make(map[edgeKey]*models.Relationship),
		names: make(map[uuid.UUID]string),
	}
}

var _ repositories.RelationshipRepository = (*memRelRepo)(nil)

func (r *memRelRepo) Upsert(ctx context.Context, rel *models.Relationship) error {
	key := edgeKey{rel.PersonID, rel.RelativeID, rel.Type}
	if _, ok := r.edges[key]; ok {
		return nil
	}
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	cp := *rel
	r.edges[key] = &cp
	return nil
}

func (r *memRelRepo) Delete(ctx context.Context, personID, relativeID uuid.UUID, relType models.RelationshipType) error {
	delete(r.edges, edgeKey{personID, relativeID, relType})
	return nil
}

func (r *memRelRepo) DeleteForPerson(ctx context.Context, personID uuid.UUID) error {
	for key := range r.edges {
		if key.personID == personID || key.relativeID == personID {
			delete(r.edges, key)
		}
	}
	return nil
}

func (r *memRelRepo) ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.RelationshipWithName, error) {
	var out []*models.RelationshipWithName
	for key, rel := range r.edges {
		if key.personID != personID {
			continue
		}
		out = append(out, &models.RelationshipWithName{
			Relationship: *rel,
			RelativeName: r.names[key.relativeID],
		})
	}
	return out, nil
}

func (r *memRelRepo) ListAll(ctx context.Context) ([]*models.RelationshipWithName, error) {
	var out []*models.RelationshipWithName
	for key, rel := range r.edges {
		out = append(out, &models.RelationshipWithName{
			Relationship: *rel,
			RelativeName: r.names[key.relativeID],
		})
	}
	return out, nil
}

func (r *memRelRepo) ListByType(ctx context.Context, personID uuid.UUID, relType models.RelationshipType) ([]*models.Relationship, error) {
	var out []*models.Relationship
	for key, rel := range r.edges {
		if key.personID == personID && key.relType == relType {
			cp := *rel
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRelRepo) ListTouching(ctx context.Context, personID uuid.UUID) ([]*models.Relationship, error) {
	var out []*models.Relationship
	for key, rel := range r.edges {
		if key.personID == personID || key.relativeID == personID {
			cp := *rel
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRelRepo) ParentIDs(ctx context.Context, personID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for key := range r.edges {
		if key.relativeID == personID && key.relType == models.RelationshipChild {
			out = append(out, key.personID)
		}
	}
	return out, nil
}

func (r *memRelRepo) has(personID, relativeID uuid.UUID, relType models.RelationshipType) bool {
	_, ok := r.edges[edgeKey{personID, relativeID, relType}]
	return ok
}

type memDeathRepo struct {
	deaths map[uuid.UUID][]*models.DeathRecord
}

func newMemDeathRepo() *memDeathRepo {
	return &memDeathRepo{deaths: make(map[uuid.UUID][]*models.DeathRecord)}
}

var _ repositories.DeathRepository = (*memDeathRepo)(nil)

func (r *memDeathRepo) Create(ctx context.Context, d *models.DeathRecord) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	r.deaths[d.PersonID] = append(r.deaths[d.PersonID], &cp)
	return nil
}

func (r *memDeathRepo) ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.DeathRecord, error) {
	return r.deaths[personID], nil
}

func (r *memDeathRepo) DeleteForPerson(ctx context.Context, personID uuid.UUID) error {
	delete(r.deaths, personID)
	return nil
}

type memMarriageRepo struct {
	marriages map[uuid.UUID]*models.Marriage
}

func newMemMarriageRepo() *memMarriageRepo {
	return &memMarriageRepo{marriages: make(map[uuid.UUID]*models.Marriage)}
}

var _ repositories.MarriageRepository = (*memMarriageRepo)(nil)

func (r *memMarriageRepo) Create(ctx context.Context, m *models.Marriage) error {
	if existing, _ := r.GetByPair(context.Background(), m.PersonID, m.SpouseID); existing != nil {
		return fmt.Errorf("duplicate marriage for pair")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.marriages[m.ID] = &cp
	return nil
}

func (r *memMarriageRepo) GetByPair(ctx context.Context, personID, spouseID uuid.UUID) (*models.Marriage, error) {
	for _, m := range r.marriages {
		if (m.PersonID == personID && m.SpouseID == spouseID) ||
			(m.PersonID == spouseID && m.SpouseID == personID) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMarriageRepo) UpdateDates(ctx context.Context, id uuid.UUID, marriageDate time.Time, divorceDate *time.Time) (*models.Marriage, error) {
	m, ok := r.marriages[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	m.MarriageDate = marriageDate
	m.DivorceDate = divorceDate
	m.UpdatedAt = time.Now()
	cp := *m
	return &cp, nil
}

func (r *memMarriageRepo) ListForPerson(ctx context.Context, personID uuid.UUID) ([]*models.Marriage, error) {
	var out []*models.Marriage
	for _, m := range r.marriages {
		if m.PersonID == personID || m.SpouseID == personID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}
