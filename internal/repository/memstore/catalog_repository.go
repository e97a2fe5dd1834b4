package memstore

import (
	"context"
	"sort"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"
	"pattern-sphere-be/pkg/apperror"

	"github.com/google/uuid"
)

func featureFields(f entity.Feature) fields {
	return fields{id: f.Id, name: f.Name, required: f.Required, typ: string(f.Type)}
}

func templateFields(t entity.Template) fields {
	return fields{id: t.Id, name: t.Name}
}

func linkFields(l entity.TemplateFeature) fields {
	return fields{id: l.Id, templateId: l.TemplateId, featureId: l.FeatureId}
}

func duplicate(kind, name string) error {
	return apperror.DuplicateName("%s name %q already in use", kind, name)
}

type featureRepository struct {
	store *dataView
}

func (r *featureRepository) save(feature *entity.Feature, creating bool) error {
	d := r.store.data()
	if feature.Id == uuid.Nil {
		feature.Id = uuid.New()
	}
	for _, other := range d.features.rows {
		if other.Id == feature.Id {
			continue
		}
		if other.Name == feature.Name {
			return duplicate("feature", feature.Name)
		}
		if other.StorageName == feature.StorageName {
			return duplicate("storage", feature.StorageName)
		}
	}
	ts := now()
	if creating || feature.CreatedAt.IsZero() {
		feature.CreatedAt = ts
	}
	feature.UpdatedAt = ts
	insert(d, d.features, feature.Id, *feature)
	return nil
}

func (r *featureRepository) Create(ctx context.Context, feature *entity.Feature) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(feature, true)
}

func (r *featureRepository) Update(ctx context.Context, feature *entity.Feature) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(feature, false)
}

func (r *featureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.data().features.delete(id)
	return nil
}

func (r *featureRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *featureRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows, err := filter(r.store.data(), r.store.data().features, featureFields, specs)
	if err != nil {
		return nil, err
	}
	return sortedFeatures(rows), nil
}

func sortedFeatures(rows []entity.Feature) []*entity.Feature {
	out := make([]*entity.Feature, len(rows))
	for i := range rows {
		f := rows[i]
		out[i] = &f
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *featureRepository) FindByTemplate(ctx context.Context, templateId uuid.UUID) ([]*entity.Feature, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	d := r.store.data()
	var rows []entity.Feature
	for _, link := range d.links.rows {
		if link.TemplateId != templateId {
			continue
		}
		if f, ok := d.features.rows[link.FeatureId]; ok {
			rows = append(rows, f)
		}
	}
	return sortedFeatures(rows), nil
}

func (r *featureRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

type templateRepository struct {
	store *dataView
}

func (r *templateRepository) save(template *entity.Template, creating bool) error {
	d := r.store.data()
	if template.Id == uuid.Nil {
		template.Id = uuid.New()
	}
	for _, other := range d.templates.rows {
		if other.Id != template.Id && other.Name == template.Name {
			return duplicate("template", template.Name)
		}
	}
	ts := now()
	if creating || template.CreatedAt.IsZero() {
		template.CreatedAt = ts
	}
	template.UpdatedAt = ts
	insert(d, d.templates, template.Id, *template)
	return nil
}

func (r *templateRepository) Create(ctx context.Context, template *entity.Template) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(template, true)
}

func (r *templateRepository) Update(ctx context.Context, template *entity.Template) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.save(template, false)
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.data().templates.delete(id)
	return nil
}

func (r *templateRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Template, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *templateRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Template, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows, err := filter(r.store.data(), r.store.data().templates, templateFields, specs)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Template, len(rows))
	for i := range rows {
		t := rows[i]
		out[i] = &t
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *templateRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

type templateFeatureRepository struct {
	store *dataView
}

func (r *templateFeatureRepository) Create(ctx context.Context, link *entity.TemplateFeature) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d := r.store.data()
	for _, other := range d.links.rows {
		if other.TemplateId == link.TemplateId && other.FeatureId == link.FeatureId {
			return apperror.DuplicateName("feature %s already attached to template %s", link.FeatureId, link.TemplateId)
		}
	}
	if link.Id == uuid.Nil {
		link.Id = uuid.New()
	}
	link.CreatedAt = now()
	insert(d, d.links, link.Id, *link)
	return nil
}

func (r *templateFeatureRepository) DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return deleteWhere(r.store.data(), r.store.data().links, linkFields, specs)
}

func (r *templateFeatureRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TemplateFeature, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rows, err := filter(r.store.data(), r.store.data().links, linkFields, specs)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.TemplateFeature, len(rows))
	for i := range rows {
		l := rows[i]
		out[i] = &l
	}
	return out, nil
}

func (r *templateFeatureRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *templateFeatureRepository) CountGroupedByTemplate(ctx context.Context) (map[uuid.UUID]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := map[uuid.UUID]int64{}
	for _, link := range r.store.data().links.rows {
		out[link.TemplateId]++
	}
	return out, nil
}
