package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kinworks/kin-engine/pkg/apperrors"
	"github.com/kinworks/kin-engine/pkg/models"
)

type relServiceFixture struct {
	personRepo   *memPersonRepo
	relRepo      *memRelRepo
	marriageRepo *memMarriageRepo
	cache        *MemoryTreeCache
	trees        FamilyTreeService
	svc          RelationshipService
}

func newRelServiceFixture() *relServiceFixture {
	personRepo := newMemPersonRepo()
	relRepo := newMemRelRepo()
	marriageRepo := newMemMarriageRepo()
	cache := NewMemoryTreeCache()
	logger := zap.NewNop()
	deriver := NewRelationshipDeriver(relRepo, logger)
	trees := NewFamilyTreeService(personRepo, relRepo, cache, logger)

	return &relServiceFixture{
		personRepo:   personRepo,
		relRepo:      relRepo,
		marriageRepo: marriageRepo,
		cache:        cache,
		trees:        trees,
		svc:          NewRelationshipService(&fakeTxManager{}, relRepo, personRepo, marriageRepo, deriver, trees, logger),
	}
}

func TestAssertAddsEdgesAndInvalidates(t *testing.T) {
	f := newRelServiceFixture()
	ctx := context.Background()

	parent := f.personRepo.mustAdd("Parent", "")
	child := f.personRepo.mustAdd("Child", "")

	// Warm the parent's cached tree before the edge exists.
	_, err := f.trees.Build(ctx, parent)
	require.NoError(t, err)

	err = f.svc.Assert(ctx, child, []models.RelationshipRequest{
		{RelativeID: parent, Type: models.RelationshipParent},
	})
	require.NoError(t, err)

	assert.True(t, f.relRepo.has(child, parent, models.RelationshipParent))
	assert.True(t, f.relRepo.has(parent, child, models.RelationshipChild))

	_, cached := f.cache.Get(ctx, parent)
	assert.False(t, cached, "the new parent's stale tree is dropped")
}

func TestAssertUnknownPersonReturnsNotFound(t *testing.T) {
	f := newRelServiceFixture()

	err := f.svc.Assert(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReplaceInvalidatesDetachedRelatives(t *testing.T) {
	f := newRelServiceFixture()
	ctx := context.Background()

	subject := f.personRepo.mustAdd("Subject", "")
	old := f.personRepo.mustAdd("Old", "")

	require.NoError(t, f.svc.Assert(ctx, subject, []models.RelationshipRequest{
		{RelativeID: old, Type: models.RelationshipSibling},
	}))

	_, err := f.trees.Build(ctx, old)
	require.NoError(t, err)

	require.NoError(t, f.svc.Replace(ctx, subject, nil))

	assert.False(t, f.relRepo.has(subject, old, models.RelationshipSibling))
	_, cached := f.cache.Get(ctx, old)
	assert.False(t, cached, "a relative losing its edge still gets invalidated")
}

func TestReplaceKeepsMarriageSpouseEdges(t *testing.T) {
	f := newRelServiceFixture()
	ctx := context.Background()

	a := f.personRepo.mustAdd("Ato", "")
	b := f.personRepo.mustAdd("Ewura", "")

	_, err := ensureMarriage(ctx, f.marriageRepo, f.relRepo, a, &MarriageInput{
		SpouseID:     b,
		MarriageDate: time.Date(1995, 8, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// A replace that restates no relationships must not strip the Spouse
	// edges backing the stored marriage.
	require.NoError(t, f.svc.Replace(ctx, a, nil))

	marriage, err := f.marriageRepo.GetByPair(ctx, a, b)
	require.NoError(t, err)
	require.NotNil(t, marriage)
	assert.True(t, f.relRepo.has(a, b, models.RelationshipSpouse))
	assert.True(t, f.relRepo.has(b, a, models.RelationshipSpouse))
}

func TestForPersonUnknownReturnsNotFound(t *testing.T) {
	f := newRelServiceFixture()

	_, err := f.svc.ForPerson(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
