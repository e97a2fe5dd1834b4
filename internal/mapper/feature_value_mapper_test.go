package mapper

import (
	"testing"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureValueMapper_IntegerRow(t *testing.T) {
	m := NewFeatureValueMapper()
	v := &entity.FeatureValue{Id: uuid.New(), PatternId: uuid.New(), FeatureId: uuid.New(), Value: "-42"}

	row, err := m.ToModel(entity.FeatureTypeInteger, v)
	require.NoError(t, err)
	iv, ok := row.(*model.IntegerValue)
	require.True(t, ok)
	assert.Equal(t, int64(-42), iv.Value)
	assert.Equal(t, "-42", m.ToEntity(row).Value)
}

func TestFeatureValueMapper_IntegerRejectsText(t *testing.T) {
	m := NewFeatureValueMapper()
	_, err := m.ToModel(entity.FeatureTypeInteger, &entity.FeatureValue{Value: "12a"})
	assert.Error(t, err)
}

func TestFeatureValueMapper_ImageRow(t *testing.T) {
	m := NewFeatureValueMapper()
	v := &entity.FeatureValue{Filename: "a.png", AltText: "A", Hash: "0123456789abcdef0123456789abcdef01234567"}

	row, err := m.ToModel(entity.FeatureTypeImage, v)
	require.NoError(t, err)
	got := m.ToEntity(row)
	assert.Equal(t, "a.png", got.Filename)
	assert.Equal(t, "A", got.AltText)
	assert.Equal(t, v.Hash, got.Hash)
	assert.Empty(t, got.Value)
}

func TestFeatureValueMapper_Slices(t *testing.T) {
	m := NewFeatureValueMapper()
	for _, ft := range entity.FeatureTypes {
		rows, err := m.NewModelSlice(ft)
		require.NoError(t, err)
		assert.Empty(t, m.ToEntities(rows))
	}

	rows := &[]*model.TextValue{{Value: "one"}, {Value: "two"}}
	got := m.ToEntities(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[1].Value)

	_, err := m.NewModel(entity.FeatureType("blob"))
	assert.Error(t, err)
}
