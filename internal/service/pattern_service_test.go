package service

import (
	"errors"
	"testing"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/pkg/apperror"
	"pattern-sphere-be/pkg/blobstore"
	"pattern-sphere-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndBasicTemplate(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")

	p := f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "The Good Life"}})

	shown, err := f.patterns.Show(f.ctx, p.Id)
	require.NoError(t, err)
	require.NotNil(t, shown.Features["title"].Value)
	assert.Equal(t, "The Good Life", *shown.Features["title"].Value)
	assert.Equal(t, "Basic", shown.TemplateName)

	list, err := f.patterns.List(f.ctx, &dto.ListPatternsRequest{TemplateId: &basic.Id})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.Id, list[0].Id)
	assert.Equal(t, "The Good Life", list[0].Title)
	assert.Equal(t, "Basic", list[0].TemplateName)
}

func TestShowListsEveryTemplateFeature(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	body := f.feature(t, "body", "text", false)
	photo := f.feature(t, "photo", "image", false)
	f.attach(t, basic, body, photo)

	p := f.insert(t, basic, map[string]dto.FieldInput{"body": {Value: "hello"}})

	require.Len(t, p.Features, 2)
	assert.Equal(t, "hello", *p.Features["body"].Value)
	assert.Nil(t, p.Features["photo"].Hash)
	assert.Nil(t, p.Features["photo"].Value)
}

func TestImageRoundTripDedupsBlobs(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	photo := f.feature(t, "photo", "image", false)
	f.attach(t, basic, photo)

	upload := func() *dto.ImageUpload { return &dto.ImageUpload{Filename: "cat.png", Data: pngBytes} }
	first := f.insert(t, basic, map[string]dto.FieldInput{"photo": {AltText: "A", Upload: upload()}})
	second := f.insert(t, basic, map[string]dto.FieldInput{"photo": {AltText: "B", Upload: upload()}})

	want := blobstore.Hash(pngBytes)
	entry := first.Features["photo"]
	assert.Equal(t, want, *entry.Hash)
	assert.Equal(t, "A", *entry.AltText)
	assert.Equal(t, "cat.png", *entry.Filename)
	assert.Equal(t, "/api/image/v1/"+want, *entry.URL)
	assert.Equal(t, want, *second.Features["photo"].Hash)

	// Dropping one of two references keeps the blob.
	require.NoError(t, f.patterns.Delete(f.ctx, first.Id))
	assert.True(t, f.blobs.Exists(want))
	ref, err := f.images.IsReferenced(f.ctx, want)
	require.NoError(t, err)
	assert.True(t, ref)

	require.NoError(t, f.patterns.Delete(f.ctx, second.Id))
	assert.False(t, f.blobs.Exists(want))
	ref, err = f.images.IsReferenced(f.ctx, want)
	require.NoError(t, err)
	assert.False(t, ref)
}

func TestInsertValidation(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]dto.FieldInput
		want   error
	}{
		{"required missing", map[string]dto.FieldInput{}, apperror.ErrValidation},
		{"required blank", map[string]dto.FieldInput{"title": {Value: "   "}}, apperror.ErrValidation},
		{"unknown feature", map[string]dto.FieldInput{"title": {Value: "x"}, "colour": {Value: "red"}}, apperror.ErrValidation},
		{"not an integer", map[string]dto.FieldInput{"title": {Value: "x"}, "floors": {Value: "three"}}, apperror.ErrValidation},
		{"image without upload", map[string]dto.FieldInput{"title": {Value: "x"}, "photo": {AltText: "alt"}}, apperror.ErrValidation},
		{"image without alt text", map[string]dto.FieldInput{
			"title": {Value: "x"},
			"photo": {Upload: &dto.ImageUpload{Filename: "a.png", Data: pngBytes}},
		}, apperror.ErrValidation},
		{"image not allowed", map[string]dto.FieldInput{
			"title": {Value: "x"},
			"photo": {AltText: "alt", Upload: &dto.ImageUpload{Filename: "a.txt", Data: []byte("plain text")}},
		}, apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.feature(t, "title", "string", true)
			basic := f.template(t, "Basic")
			f.attach(t, basic, f.feature(t, "floors", "integer", false), f.feature(t, "photo", "image", false))

			_, err := f.patterns.Insert(f.ctx, &dto.InsertPatternRequest{TemplateId: basic.Id, Values: tt.values})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			n, err := f.patterns.Count(f.ctx, basic.Id)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestInsertRollsBackStoredBlob(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	photo := f.feature(t, "photo", "image", false)
	rooms := f.feature(t, "rooms", "integer", false)
	f.attach(t, basic, photo, rooms)

	// Features are processed by name, so rooms fails after photo is stored.
	_, err := f.patterns.Insert(f.ctx, &dto.InsertPatternRequest{
		TemplateId: basic.Id,
		Values: map[string]dto.FieldInput{
			"photo": {AltText: "x", Upload: &dto.ImageUpload{Filename: "a.png", Data: pngBytes}},
			"rooms": {Value: "many"},
		},
	})
	require.Error(t, err)
	assert.False(t, f.blobs.Exists(blobstore.Hash(pngBytes)))
}

func TestInsertNormalizesIntegers(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	f.attach(t, basic, f.feature(t, "floors", "integer", false))

	p := f.insert(t, basic, map[string]dto.FieldInput{"floors": {Value: " 007 "}})
	assert.Equal(t, "7", *p.Features["floors"].Value)
}

func TestUpdateWithoutChangesIsNoop(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")
	p, err := f.patterns.Insert(f.ctx, &dto.InsertPatternRequest{
		TemplateId: basic.Id,
		Notes:      "n",
		Values:     map[string]dto.FieldInput{"title": {Value: "same"}},
	})
	require.NoError(t, err)
	before := len(f.recorder.Events)

	res, err := f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{Id: p.Id, Notes: strPtr("n")})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	res, err = f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{
		Id:     p.Id,
		Values: map[string]dto.FieldInput{"title": {Value: "same"}},
	})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	after, err := f.patterns.Show(f.ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, p.UpdatedAt, after.UpdatedAt)
	assert.Len(t, f.recorder.Events, before)
}

func TestUpdateDiff(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")
	f.attach(t, basic, f.feature(t, "body", "text", false), f.feature(t, "floors", "integer", false))
	p := f.insert(t, basic, map[string]dto.FieldInput{
		"title": {Value: "old"},
		"body":  {Value: "gone soon"},
	})

	res, err := f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{
		Id:      p.Id,
		Notes:   strPtr("edited"),
		Values:  map[string]dto.FieldInput{"title": {Value: "new"}, "floors": {Value: "3"}},
		Deletes: []string{"body"},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	shown, err := f.patterns.Show(f.ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, "edited", shown.Notes)
	assert.Equal(t, "new", *shown.Features["title"].Value)
	assert.Equal(t, "3", *shown.Features["floors"].Value)
	assert.Nil(t, shown.Features["body"].Value)
	assert.Equal(t, events.PatternUpdated, f.recorder.Types()[len(f.recorder.Events)-1])

	// An empty optional scalar removes the value.
	res, err = f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{
		Id:     p.Id,
		Values: map[string]dto.FieldInput{"floors": {Value: ""}},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	shown, err = f.patterns.Show(f.ctx, p.Id)
	require.NoError(t, err)
	assert.Nil(t, shown.Features["floors"].Value)
}

func TestUpdateRequiredEnforcement(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")
	p := f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "keep"}})

	_, err := f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{Id: p.Id, Values: map[string]dto.FieldInput{"title": {Value: ""}}})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{Id: p.Id, Deletes: []string{"title"}})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	shown, err := f.patterns.Show(f.ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, "keep", *shown.Features["title"].Value)
}

func TestUpdateImage(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	f.attach(t, basic, f.feature(t, "photo", "image", false))
	p := f.insert(t, basic, map[string]dto.FieldInput{
		"photo": {AltText: "png", Upload: &dto.ImageUpload{Filename: "a.png", Data: pngBytes}},
	})
	oldHash := blobstore.Hash(pngBytes)
	newHash := blobstore.Hash(gifBytes)

	// Alt text alone can change without an upload.
	res, err := f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{Id: p.Id, Values: map[string]dto.FieldInput{"photo": {AltText: "renamed"}}})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	_, err = f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{Id: p.Id, Values: map[string]dto.FieldInput{"photo": {AltText: ""}}})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	res, err = f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{Id: p.Id, Values: map[string]dto.FieldInput{
		"photo": {AltText: "renamed", Upload: &dto.ImageUpload{Filename: "b.gif", Data: gifBytes}},
	}})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, f.blobs.Exists(oldHash))
	assert.True(t, f.blobs.Exists(newHash))

	shown, err := f.patterns.Show(f.ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, newHash, *shown.Features["photo"].Hash)
	assert.Equal(t, "renamed", *shown.Features["photo"].AltText)
	assert.Equal(t, "b.gif", *shown.Features["photo"].Filename)

	res, err = f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{Id: p.Id, Deletes: []string{"photo"}})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, f.blobs.Exists(newHash))
}

func TestUpdateRejectsConflictingSignals(t *testing.T) {
	f := newFixture(t)
	basic := f.template(t, "Basic")
	f.attach(t, basic, f.feature(t, "body", "text", false))
	p := f.insert(t, basic, map[string]dto.FieldInput{"body": {Value: "x"}})

	_, err := f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{
		Id:      p.Id,
		Values:  map[string]dto.FieldInput{"body": {Value: "y"}},
		Deletes: []string{"body"},
	})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = f.patterns.Update(f.ctx, &dto.UpdatePatternRequest{Id: uuid.New()})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListPatternsByLanguage(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")
	a := f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "a"}})
	f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "b"}})
	lang, err := f.languages.Create(f.ctx, &dto.CreateLanguageRequest{Name: "Towns"})
	require.NoError(t, err)
	_, err = f.languages.ReconcileMembers(f.ctx, &dto.ReconcileMembersRequest{LanguageId: lang.Id, PatternIds: []uuid.UUID{a.Id}})
	require.NoError(t, err)

	list, err := f.patterns.List(f.ctx, &dto.ListPatternsRequest{LanguageId: &lang.Id})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Title)
}
