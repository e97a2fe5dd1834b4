package service

import (
	"errors"
	"testing"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/pkg/apperror"
	"pattern-sphere-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFeatureProvisionsStorage(t *testing.T) {
	f := newFixture(t)

	feature := f.feature(t, "  summary ", "text", false)

	assert.Equal(t, "summary", feature.Name)
	assert.Equal(t, "text", feature.Type)
	assert.True(t, f.store.HasTable(entity.StorageNameFor(feature.Id)))
	assert.Equal(t, []string{events.FeatureCreated}, f.recorder.Types())
}

func TestCreateFeatureRejects(t *testing.T) {
	tests := []struct {
		name string
		req  dto.CreateFeatureRequest
		want error
	}{
		{"empty name", dto.CreateFeatureRequest{Name: "  ", Type: "string"}, apperror.ErrInvalidIdentifier},
		{"reserved prefix", dto.CreateFeatureRequest{Name: "f-photo", Type: "image"}, apperror.ErrInvalidIdentifier},
		{"bad characters", dto.CreateFeatureRequest{Name: "two words", Type: "string"}, apperror.ErrInvalidIdentifier},
		{"unknown type", dto.CreateFeatureRequest{Name: "weight", Type: "float"}, apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.features.Create(f.ctx, &tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFeatureNameIsUniqueAcrossTypes(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", false)

	_, err := f.features.Create(f.ctx, &dto.CreateFeatureRequest{Name: "title", Type: "image"})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateName))

	// Names are case sensitive.
	_, err = f.features.Create(f.ctx, &dto.CreateFeatureRequest{Name: "Title", Type: "string"})
	assert.NoError(t, err)
}

func TestRequiredFeatureAttachesToExistingTemplates(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	other := f.template(t, "Other")

	title := f.feature(t, "title", "string", true)

	for _, id := range []uuid.UUID{basic.Id, other.Id} {
		tpl, err := f.templates.Show(f.ctx, id)
		require.NoError(t, err)
		require.Len(t, tpl.Features, 1)
		assert.Equal(t, title.Id, tpl.Features[0].Id)
	}
}

func TestUpdateFeatureToRequiredAttaches(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	notes := f.feature(t, "remarks", "text", false)

	_, err := f.features.Update(f.ctx, &dto.UpdateFeatureRequest{Id: notes.Id, Required: boolPtr(true)})
	require.NoError(t, err)

	tpl, err := f.templates.Show(f.ctx, basic.Id)
	require.NoError(t, err)
	require.Len(t, tpl.Features, 1)
	assert.Equal(t, "remarks", tpl.Features[0].Name)
}

func TestUpdateFeatureTypeOnlyWhileEmpty(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	size := f.feature(t, "size", "string", false)
	f.attach(t, basic, size)

	updated, err := f.features.Update(f.ctx, &dto.UpdateFeatureRequest{Id: size.Id, Type: strPtr("integer")})
	require.NoError(t, err)
	assert.Equal(t, "integer", updated.Type)

	f.insert(t, basic, map[string]dto.FieldInput{"size": {Value: "42"}})

	_, err = f.features.Update(f.ctx, &dto.UpdateFeatureRequest{Id: size.Id, Type: strPtr("text")})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	stats, err := f.features.UsageStats(f.ctx, size.Id)
	require.NoError(t, err)
	assert.True(t, stats.TypeLocked)
	assert.EqualValues(t, 1, stats.TotalCount)
	require.Len(t, stats.Usage, 1)
	assert.Equal(t, "Basic", stats.Usage[0].TemplateName)
}

func TestUpdateFeatureRenameClash(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", false)
	body := f.feature(t, "body", "text", false)

	_, err := f.features.Update(f.ctx, &dto.UpdateFeatureRequest{Id: body.Id, Name: strPtr("title")})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateName))

	_, err = f.features.Update(f.ctx, &dto.UpdateFeatureRequest{Id: uuid.New(), Name: strPtr("x")})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteFeatureCascades(t *testing.T) {
	f := newFixture(t)
	photo := f.feature(t, "photo", "image", false)
	var templates []*dto.TemplateDetailResponse
	for _, name := range []string{"A", "B", "C"} {
		tpl := f.template(t, name)
		f.attach(t, tpl, photo)
		templates = append(templates, tpl)
	}
	p := f.insert(t, templates[0], map[string]dto.FieldInput{
		"photo": {AltText: "cat", Upload: &dto.ImageUpload{Filename: "cat.png", Data: pngBytes}},
	})
	hash := *p.Features["photo"].Hash

	require.NoError(t, f.features.Delete(f.ctx, photo.Id))

	for _, tpl := range templates {
		detail, err := f.templates.Show(f.ctx, tpl.Id)
		require.NoError(t, err)
		assert.Empty(t, detail.Features)
	}
	assert.False(t, f.store.HasTable(entity.StorageNameFor(photo.Id)))
	assert.False(t, f.blobs.Exists(hash))

	_, err := f.features.Show(f.ctx, photo.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListFeaturesFilters(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	f.feature(t, "photo", "image", false)
	f.feature(t, "body", "text", false)

	all, err := f.features.List(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"body", "photo", "title"}, featureNames(all))

	required, err := f.features.List(f.ctx, &dto.ListFeaturesRequest{Required: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, featureNames(required))

	images, err := f.features.List(f.ctx, &dto.ListFeaturesRequest{Type: "image"})
	require.NoError(t, err)
	assert.Equal(t, []string{"photo"}, featureNames(images))
}

func featureNames(features []*dto.FeatureResponse) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.Name
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
