package service

import (
	"errors"
	"testing"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/pkg/apperror"
	"pattern-sphere-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTemplateAttachesRequiredFeatures(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	f.feature(t, "photo", "image", false)

	basic := f.template(t, "Basic")

	require.Len(t, basic.Features, 1)
	assert.Equal(t, "title", basic.Features[0].Name)
}

func TestTemplateNameUnique(t *testing.T) {
	f := newFixture(t)
	f.template(t, "Basic")

	_, err := f.templates.Create(f.ctx, &dto.CreateTemplateRequest{Name: "Basic"})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateName))

	_, err = f.templates.Create(f.ctx, &dto.CreateTemplateRequest{Name: "f-basic"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidIdentifier))
}

func TestAttachFeatureIsIdempotent(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	body := f.feature(t, "body", "text", false)

	f.attach(t, basic, body, body)

	detail, err := f.templates.Show(f.ctx, basic.Id)
	require.NoError(t, err)
	assert.Len(t, detail.Features, 1)
	assert.Equal(t, 1, countType(f.recorder, events.TemplateFeatureAttached))
}

func TestAttachFeatureRejectsBadIds(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")

	err := f.templates.AttachFeature(f.ctx, basic.Id, uuid.Nil)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	err = f.templates.AttachFeature(f.ctx, basic.Id, uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDetachFeatureDeletesValues(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	other := f.template(t, "Other")
	body := f.feature(t, "body", "text", false)
	f.attach(t, basic, body)
	f.attach(t, other, body)

	f.insert(t, basic, map[string]dto.FieldInput{"body": {Value: "one"}})
	f.insert(t, basic, map[string]dto.FieldInput{"body": {Value: "two"}})
	kept := f.insert(t, other, map[string]dto.FieldInput{"body": {Value: "three"}})

	n, err := f.templates.CountFeatureValues(f.ctx, basic.Id, body.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	lost, err := f.templates.DetachFeature(f.ctx, basic.Id, body.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, lost)

	detail, err := f.templates.Show(f.ctx, basic.Id)
	require.NoError(t, err)
	assert.Empty(t, detail.Features)

	p, err := f.patterns.Show(f.ctx, kept.Id)
	require.NoError(t, err)
	assert.Equal(t, "three", *p.Features["body"].Value)

	_, err = f.templates.DetachFeature(f.ctx, basic.Id, body.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeleteTemplateCascades(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	photo := f.feature(t, "photo", "image", false)
	f.attach(t, basic, photo)
	p := f.insert(t, basic, map[string]dto.FieldInput{
		"photo": {AltText: "logo", Upload: &dto.ImageUpload{Filename: "logo.gif", Data: gifBytes}},
	})
	hash := *p.Features["photo"].Hash
	lang, err := f.languages.Create(f.ctx, &dto.CreateLanguageRequest{Name: "Towns"})
	require.NoError(t, err)
	_, err = f.languages.ReconcileMembers(f.ctx, &dto.ReconcileMembersRequest{LanguageId: lang.Id, PatternIds: []uuid.UUID{p.Id}})
	require.NoError(t, err)
	_, err = f.views.Create(f.ctx, &dto.CreateViewRequest{TemplateId: basic.Id, Name: "card"})
	require.NoError(t, err)

	require.NoError(t, f.templates.Delete(f.ctx, basic.Id))

	_, err = f.patterns.Show(f.ctx, p.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.False(t, f.blobs.Exists(hash))

	members, err := f.languages.Members(f.ctx, lang.Id)
	require.NoError(t, err)
	assert.Empty(t, members.PatternIds)

	views, err := f.views.List(f.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, views)

	stats, err := f.features.UsageStats(f.ctx, photo.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalCount)
}

func TestListTemplatesCounts(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")
	f.template(t, "Empty")
	f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "a"}})
	f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "b"}})

	list, err := f.templates.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Basic", list[0].Name)
	assert.EqualValues(t, 2, list[0].PatternCount)
	assert.EqualValues(t, 1, list[0].FeatureCount)
	assert.EqualValues(t, 0, list[1].PatternCount)

	n, err := f.patterns.Count(f.ctx, basic.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func countType(r *events.Recorder, eventType string) int {
	n := 0
	for _, typ := range r.Types() {
		if typ == eventType {
			n++
		}
	}
	return n
}
