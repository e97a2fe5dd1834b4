package memstore

import (
	"context"
	"errors"
	"testing"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"
	"pattern-sphere-be/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type rawWhere struct{}

func (rawWhere) Apply(db *gorm.DB) *gorm.DB { return db }

func newFeature(name string, t entity.FeatureType) *entity.Feature {
	id := uuid.New()
	return &entity.Feature{Id: id, Name: name, Type: t, StorageName: entity.StorageNameFor(id)}
}

func TestUnitOfWork_RollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	store := New()
	f := newFeature("title", entity.FeatureTypeString)

	uow := store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.FeatureRepository().Create(ctx, f))
	require.NoError(t, uow.FeatureValueRepository().CreateStorage(ctx, f))
	has, err := uow.FeatureValueRepository().HasStorage(ctx, f)
	require.NoError(t, err)
	assert.True(t, has)
	require.NoError(t, uow.Rollback())

	assert.False(t, store.HasTable(f.StorageName))
	got, err := store.NewUnitOfWork(ctx).FeatureRepository().FindOne(ctx, specification.ByID{ID: f.Id})
	require.NoError(t, err)
	assert.Nil(t, got)

	// Rollback after Commit is a no-op.
	uow = store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.FeatureRepository().Create(ctx, f))
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback())
	count, err := store.NewUnitOfWork(ctx).FeatureRepository().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestFeatureRepository_DuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := New().NewUnitOfWork(ctx).FeatureRepository()

	require.NoError(t, repo.Create(ctx, newFeature("title", entity.FeatureTypeString)))
	err := repo.Create(ctx, newFeature("title", entity.FeatureTypeInteger))
	assert.True(t, errors.Is(err, apperror.ErrDuplicateName))
}

func TestFeatureValueRepository_OneValuePerPattern(t *testing.T) {
	ctx := context.Background()
	uow := New().NewUnitOfWork(ctx)
	f := newFeature("year", entity.FeatureTypeInteger)
	values := uow.FeatureValueRepository()
	require.NoError(t, values.CreateStorage(ctx, f))

	pid := uuid.New()
	require.NoError(t, values.Create(ctx, f, &entity.FeatureValue{PatternId: pid, Value: "1977"}))
	assert.Error(t, values.Create(ctx, f, &entity.FeatureValue{PatternId: pid, Value: "1978"}))
	assert.Error(t, values.Create(ctx, f, &entity.FeatureValue{PatternId: uuid.New(), Value: "soon"}))

	got, err := values.FindByPattern(ctx, f, pid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1977", got.Value)
	assert.Equal(t, f.Id, got.FeatureId)

	missing, err := values.FindByPattern(ctx, f, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMatch_UnsupportedSpecification(t *testing.T) {
	ctx := context.Background()
	_, err := New().NewUnitOfWork(ctx).TemplateRepository().FindAll(ctx, rawWhere{})
	assert.Error(t, err)
}

func TestDeleteWhere_RequiresConditions(t *testing.T) {
	ctx := context.Background()
	_, err := New().NewUnitOfWork(ctx).TemplateFeatureRepository().DeleteWhere(ctx)
	assert.Error(t, err)
}

func TestUnitOfWork_ReadersSeeOnlyCommittedData(t *testing.T) {
	ctx := context.Background()
	store := New()
	tpl := &entity.Template{Id: uuid.New(), Name: "Basic"}
	require.NoError(t, store.NewUnitOfWork(ctx).TemplateRepository().Create(ctx, tpl))

	writer := store.NewUnitOfWork(ctx)
	require.NoError(t, writer.Begin(ctx))
	p := &entity.Pattern{Id: uuid.New(), TemplateId: tpl.Id}
	require.NoError(t, writer.PatternRepository().Create(ctx, p))

	reader := store.NewUnitOfWork(ctx)
	got, err := reader.PatternRepository().FindOne(ctx, specification.ByID{ID: p.Id})
	require.NoError(t, err)
	assert.Nil(t, got, "uncommitted pattern visible outside the transaction")

	// The writer reads its own writes.
	got, err = writer.PatternRepository().FindOne(ctx, specification.ByID{ID: p.Id})
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, writer.Commit())
	got, err = reader.PatternRepository().FindOne(ctx, specification.ByID{ID: p.Id})
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestUnitOfWork_RolledBackRowsNeverVisible(t *testing.T) {
	ctx := context.Background()
	store := New()
	f := newFeature("body", entity.FeatureTypeText)

	writer := store.NewUnitOfWork(ctx)
	require.NoError(t, writer.Begin(ctx))
	require.NoError(t, writer.FeatureRepository().Create(ctx, f))

	n, err := store.NewUnitOfWork(ctx).FeatureRepository().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.NoError(t, writer.Rollback())
	n, err = store.NewUnitOfWork(ctx).FeatureRepository().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
