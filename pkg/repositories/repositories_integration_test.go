//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/models"
	"github.com/kinworks/kin-engine/pkg/testhelpers"
)

func integrationCtx(t *testing.T) context.Context {
	t.Helper()
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	return tdb.DB.WithPool(context.Background())
}

func createPerson(t *testing.T, ctx context.Context, repo PersonRepository, first, last string) *models.Person {
	t.Helper()
	p := &models.Person{FirstName: first, LastName: last, Gender: models.GenderOther}
	require.NoError(t, repo.Create(ctx, p))
	return p
}

func TestPersonCRUD(t *testing.T) {
	ctx := integrationCtx(t)
	repo := NewPersonRepository()

	p := createPerson(t, ctx, repo, "Ama", "Mensah")

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ama", got.FirstName)

	got.Nickname = strPtr("Maame")
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Nickname)
	assert.Equal(t, "Maame", *updated.Nickname)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPersonNotFound(t *testing.T) {
	ctx := integrationCtx(t)
	repo := NewPersonRepository()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), apperrors.ErrNotFound)
}

func TestRelationshipUpsertIsIdempotent(t *testing.T) {
	ctx := integrationCtx(t)
	personRepo := NewPersonRepository()
	relRepo := NewRelationshipRepository()

	a := createPerson(t, ctx, personRepo, "A", "")
	b := createPerson(t, ctx, personRepo, "B", "")

	rel := &models.Relationship{PersonID: a.ID, RelativeID: b.ID, Type: models.RelationshipSibling}
	require.NoError(t, relRepo.Upsert(ctx, rel))

	// Same tuple again: the unique constraint absorbs it.
	dup := &models.Relationship{PersonID: a.ID, RelativeID: b.ID, Type: models.RelationshipSibling}
	require.NoError(t, relRepo.Upsert(ctx, dup))

	rels, err := relRepo.ListTouching(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

func TestRelationshipCascadeOnPersonDelete(t *testing.T) {
	ctx := integrationCtx(t)
	personRepo := NewPersonRepository()
	relRepo := NewRelationshipRepository()

	a := createPerson(t, ctx, personRepo, "A", "")
	b := createPerson(t, ctx, personRepo, "B", "")

	require.NoError(t, relRepo.Upsert(ctx, &models.Relationship{
		PersonID: a.ID, RelativeID: b.ID, Type: models.RelationshipSpouse,
	}))
	require.NoError(t, relRepo.Upsert(ctx, &models.Relationship{
		PersonID: b.ID, RelativeID: a.ID, Type: models.RelationshipSpouse,
	}))

	require.NoError(t, personRepo.Delete(ctx, a.ID))

	rels, err := relRepo.ListTouching(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, rels, "edges referencing a deleted person cascade away")
}

func TestParentIDs(t *testing.T) {
	ctx := integrationCtx(t)
	personRepo := NewPersonRepository()
	relRepo := NewRelationshipRepository()

	parent := createPerson(t, ctx, personRepo, "Parent", "")
	child := createPerson(t, ctx, personRepo, "Child", "")

	require.NoError(t, relRepo.Upsert(ctx, &models.Relationship{
		PersonID: parent.ID, RelativeID: child.ID, Type: models.RelationshipChild,
	}))

	ids, err := relRepo.ParentIDs(ctx, child.ID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, parent.ID, ids[0])
}

func TestMarriagePairUniqueness(t *testing.T) {
	ctx := integrationCtx(t)
	personRepo := NewPersonRepository()
	marriageRepo := NewMarriageRepository()

	a := createPerson(t, ctx, personRepo, "A", "")
	b := createPerson(t, ctx, personRepo, "B", "")

	m := &models.Marriage{
		PersonID:     a.ID,
		SpouseID:     b.ID,
		MarriageDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, marriageRepo.Create(ctx, m))

	// Reversed pair violates the unordered-pair unique index.
	reversed := &models.Marriage{
		PersonID:     b.ID,
		SpouseID:     a.ID,
		MarriageDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Error(t, marriageRepo.Create(ctx, reversed))

	found, err := marriageRepo.GetByPair(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, m.ID, found.ID)
}

func TestDeathRecordsReplace(t *testing.T) {
	ctx := integrationCtx(t)
	personRepo := NewPersonRepository()
	deathRepo := NewDeathRepository()

	p := createPerson(t, ctx, personRepo, "Kojo", "")

	require.NoError(t, deathRepo.Create(ctx, &models.DeathRecord{
		PersonID: p.ID,
		Date:     time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, deathRepo.DeleteForPerson(ctx, p.ID))
	require.NoError(t, deathRepo.Create(ctx, &models.DeathRecord{
		PersonID: p.ID,
		Date:     time.Date(1981, 2, 2, 0, 0, 0, 0, time.UTC),
	}))

	deaths, err := deathRepo.ListForPerson(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, deaths, 1)
}

func TestFamilyEventOrganizerSetNullOnDelete(t *testing.T) {
	ctx := integrationCtx(t)
	personRepo := NewPersonRepository()
	eventRepo := NewFamilyEventRepository()

	organizer := createPerson(t, ctx, personRepo, "Host", "")

	require.NoError(t, eventRepo.Create(ctx, &models.FamilyEvent{
		Name:        "Reunion",
		Date:        time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC),
		OrganizerID: &organizer.ID,
	}))

	require.NoError(t, personRepo.Delete(ctx, organizer.ID))

	events, err := eventRepo.ListWithOrganizer(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].OrganizerID, "deleting the organizer keeps the event")
}

func strPtr(s string) *string { return &s }
