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

func TestReconcileMembers(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")
	ids := make([]uuid.UUID, 5)
	for i := 1; i <= 4; i++ {
		ids[i] = f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "p"}}).Id
	}
	lang, err := f.languages.Create(f.ctx, &dto.CreateLanguageRequest{Name: "Towns"})
	require.NoError(t, err)

	res, err := f.languages.ReconcileMembers(f.ctx, &dto.ReconcileMembersRequest{LanguageId: lang.Id, PatternIds: ids[1:4]})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 0, res.Deleted)

	res, err = f.languages.ReconcileMembers(f.ctx, &dto.ReconcileMembersRequest{LanguageId: lang.Id, PatternIds: []uuid.UUID{ids[2], ids[3], ids[4]}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Deleted)

	members, err := f.languages.Members(f.ctx, lang.Id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{ids[2], ids[3], ids[4]}, members.PatternIds)

	shown, err := f.languages.Show(f.ctx, lang.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 3, shown.MemberCount)
	assert.Equal(t, 2, countType(f.recorder, events.LanguageMembersReconciled))
}

func TestReconcileMembersRejectsUnknownPattern(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")
	p := f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "p"}})
	lang, err := f.languages.Create(f.ctx, &dto.CreateLanguageRequest{Name: "Towns"})
	require.NoError(t, err)

	_, err = f.languages.ReconcileMembers(f.ctx, &dto.ReconcileMembersRequest{LanguageId: lang.Id, PatternIds: []uuid.UUID{p.Id, uuid.New()}})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	members, err := f.languages.Members(f.ctx, lang.Id)
	require.NoError(t, err)
	assert.Empty(t, members.PatternIds)
}

func TestLanguageNames(t *testing.T) {
	f := newFixture(t)
	towns, err := f.languages.Create(f.ctx, &dto.CreateLanguageRequest{Name: " A Pattern Language "})
	require.NoError(t, err)
	assert.Equal(t, "A Pattern Language", towns.Name)

	_, err = f.languages.Create(f.ctx, &dto.CreateLanguageRequest{Name: "A Pattern Language"})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateName))

	_, err = f.languages.Create(f.ctx, &dto.CreateLanguageRequest{Name: " "})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	res, err := f.languages.Update(f.ctx, &dto.UpdateLanguageRequest{Id: towns.Id, Name: strPtr("A Pattern Language")})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	res, err = f.languages.Update(f.ctx, &dto.UpdateLanguageRequest{Id: towns.Id, Notes: strPtr("1977")})
	require.NoError(t, err)
	assert.True(t, res.Changed)
}

func TestDeleteLanguageKeepsPatterns(t *testing.T) {
	f := newFixture(t)
	f.feature(t, "title", "string", true)
	basic := f.template(t, "Basic")
	p := f.insert(t, basic, map[string]dto.FieldInput{"title": {Value: "p"}})
	lang, err := f.languages.Create(f.ctx, &dto.CreateLanguageRequest{Name: "Towns"})
	require.NoError(t, err)
	_, err = f.languages.ReconcileMembers(f.ctx, &dto.ReconcileMembersRequest{LanguageId: lang.Id, PatternIds: []uuid.UUID{p.Id}})
	require.NoError(t, err)

	require.NoError(t, f.languages.Delete(f.ctx, lang.Id))

	_, err = f.languages.Show(f.ctx, lang.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	_, err = f.patterns.Show(f.ctx, p.Id)
	assert.NoError(t, err)

	list, err := f.languages.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
