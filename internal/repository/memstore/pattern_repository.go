package memstore

import (
	"context"
	"sort"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"
	"pattern-sphere-be/pkg/apperror"

	"github.com/google/uuid"
)

func patternFields(p entity.Pattern) fields {
	return fields{id: p.Id, templateId: p.TemplateId}
}

func languageFields(l entity.PatternLanguage) fields {
	return fields{id: l.Id, name: l.Name}
}

func memberFields(m entity.LanguageMember) fields {
	return fields{id: m.Id, languageId: m.LanguageId, patternId: m.PatternId}
}

func viewFields(v entity.PatternView) fields {
	return fields{id: v.Id, name: v.Name, templateId: v.TemplateId}
}

type patternRepository struct {
	store *dataView
}

func (r *patternRepository) save(pattern *entity.Pattern, creating bool) error {
	d := r.store.data()
	if pattern.Id == uuid.Nil {
		pattern.Id = uuid.New()
	}
	ts := now()
	if creating || pattern.CreatedAt.IsZero() {
		pattern.CreatedAt = ts
	}
	pattern.UpdatedAt = ts
	insert(d, d.patterns, pattern.Id, *pattern)
	return nil
}

func (r *patternRepository) Create(ctx context.Context, pattern *entity.Pattern) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(pattern, true)
}

func (r *patternRepository) Update(ctx context.Context, pattern *entity.Pattern) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(pattern, false)
}

func (r *patternRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.data().patterns.delete(id)
	return nil
}

func (r *patternRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Pattern, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *patternRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Pattern, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows, err := filter(r.store.data(), r.store.data().patterns, patternFields, specs)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Pattern, len(rows))
	for i := range rows {
		p := rows[i]
		out[i] = &p
	}
	return out, nil
}

func (r *patternRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *patternRepository) CountGroupedByTemplate(ctx context.Context) (map[uuid.UUID]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := map[uuid.UUID]int64{}
	for _, p := range r.store.data().patterns.rows {
		out[p.TemplateId]++
	}
	return out, nil
}

type languageRepository struct {
	store *dataView
}

func (r *languageRepository) save(language *entity.PatternLanguage, creating bool) error {
	d := r.store.data()
	if language.Id == uuid.Nil {
		language.Id = uuid.New()
	}
	for _, other := range d.languages.rows {
		if other.Id != language.Id && other.Name == language.Name {
			return duplicate("language", language.Name)
		}
	}
	ts := now()
	if creating || language.CreatedAt.IsZero() {
		language.CreatedAt = ts
	}
	language.UpdatedAt = ts
	insert(d, d.languages, language.Id, *language)
	return nil
}

func (r *languageRepository) Create(ctx context.Context, language *entity.PatternLanguage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(language, true)
}

func (r *languageRepository) Update(ctx context.Context, language *entity.PatternLanguage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(language, false)
}

func (r *languageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.data().languages.delete(id)
	return nil
}

func (r *languageRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PatternLanguage, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *languageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PatternLanguage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows, err := filter(r.store.data(), r.store.data().languages, languageFields, specs)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.PatternLanguage, len(rows))
	for i := range rows {
		l := rows[i]
		out[i] = &l
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *languageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

type languageMemberRepository struct {
	store *dataView
}

func (r *languageMemberRepository) Create(ctx context.Context, member *entity.LanguageMember) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d := r.store.data()
	for _, other := range d.members.rows {
		if other.LanguageId == member.LanguageId && other.PatternId == member.PatternId {
			return apperror.DuplicateName("pattern %s already in language %s", member.PatternId, member.LanguageId)
		}
	}
	if member.Id == uuid.Nil {
		member.Id = uuid.New()
	}
	member.CreatedAt = now()
	insert(d, d.members, member.Id, *member)
	return nil
}

func (r *languageMemberRepository) DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return deleteWhere(r.store.data(), r.store.data().members, memberFields, specs)
}

func (r *languageMemberRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LanguageMember, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows, err := filter(r.store.data(), r.store.data().members, memberFields, specs)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.LanguageMember, len(rows))
	for i := range rows {
		m := rows[i]
		out[i] = &m
	}
	return out, nil
}

func (r *languageMemberRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *languageMemberRepository) CountGroupedByLanguage(ctx context.Context) (map[uuid.UUID]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := map[uuid.UUID]int64{}
	for _, m := range r.store.data().members.rows {
		out[m.LanguageId]++
	}
	return out, nil
}

type viewRepository struct {
	store *dataView
}

func copyView(v entity.PatternView) entity.PatternView {
	if v.Layout != nil {
		layout := *v.Layout
		v.Layout = &layout
	}
	return v
}

func (r *viewRepository) save(view *entity.PatternView, creating bool) error {
	d := r.store.data()
	if view.Id == uuid.Nil {
		view.Id = uuid.New()
	}
	for _, other := range d.views.rows {
		if other.Id != view.Id && other.TemplateId == view.TemplateId && other.Name == view.Name {
			return duplicate("view", view.Name)
		}
	}
	ts := now()
	if creating || view.CreatedAt.IsZero() {
		view.CreatedAt = ts
	}
	view.UpdatedAt = ts
	insert(d, d.views, view.Id, copyView(*view))
	return nil
}

func (r *viewRepository) Create(ctx context.Context, view *entity.PatternView) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(view, true)
}

func (r *viewRepository) Update(ctx context.Context, view *entity.PatternView) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(view, false)
}

func (r *viewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.data().views.delete(id)
	return nil
}

func (r *viewRepository) DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return deleteWhere(r.store.data(), r.store.data().views, viewFields, specs)
}

func (r *viewRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PatternView, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *viewRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PatternView, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows, err := filter(r.store.data(), r.store.data().views, viewFields, specs)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.PatternView, len(rows))
	for i := range rows {
		v := copyView(rows[i])
		out[i] = &v
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *viewRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}
