package memstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"

	"github.com/google/uuid"
)

func valueFields(v entity.FeatureValue) fields {
	return fields{id: v.Id, patternId: v.PatternId, featureId: v.FeatureId, hash: v.Hash}
}

type featureValueRepository struct {
	store *dataView
}

func (r *featureValueRepository) table(feature *entity.Feature) (*valueTable, error) {
	vt, ok := r.store.data().values[feature.StorageName]
	if !ok {
		return nil, fmt.Errorf("memstore: value table %q does not exist", feature.StorageName)
	}
	return vt, nil
}

func (r *featureValueRepository) CreateStorage(ctx context.Context, feature *entity.Feature) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if feature.StorageName == "" {
		return fmt.Errorf("feature %s has no storage name", feature.Id)
	}
	if !feature.Type.Valid() {
		return fmt.Errorf("unknown feature type %q", feature.Type)
	}
	if _, ok := r.store.data().values[feature.StorageName]; ok {
		return fmt.Errorf("memstore: value table %q already exists", feature.StorageName)
	}
	r.store.data().values[feature.StorageName] = &valueTable{
		featureType: feature.Type,
		rows:        newTable[entity.FeatureValue](),
	}
	return nil
}

func (r *featureValueRepository) DropStorage(ctx context.Context, feature *entity.Feature) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.data().values, feature.StorageName)
	return nil
}

func (r *featureValueRepository) HasStorage(ctx context.Context, feature *entity.Feature) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.data().values[feature.StorageName]
	return ok, nil
}

func (r *featureValueRepository) FindByPattern(ctx context.Context, feature *entity.Feature, patternId uuid.UUID) (*entity.FeatureValue, error) {
	all, err := r.FindAll(ctx, feature, specification.ByPatternID{PatternID: patternId})
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *featureValueRepository) FindAll(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) ([]*entity.FeatureValue, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	vt, err := r.table(feature)
	if err != nil {
		return nil, err
	}
	rows, err := filter(r.store.data(), vt.rows, valueFields, specs)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.FeatureValue, len(rows))
	for i := range rows {
		v := rows[i]
		out[i] = &v
	}
	return out, nil
}

// check mirrors the column constraints of the gorm value tables.
func check(t entity.FeatureType, v *entity.FeatureValue) error {
	switch t {
	case entity.FeatureTypeInteger:
		if _, err := strconv.ParseInt(v.Value, 10, 64); err != nil {
			return fmt.Errorf("integer value %q: %w", v.Value, err)
		}
	case entity.FeatureTypeString:
		if len([]rune(v.Value)) > entity.MaxStringLength {
			return fmt.Errorf("value too long for type character varying(%d)", entity.MaxStringLength)
		}
	case entity.FeatureTypeImage:
		if len(v.Hash) != 40 {
			return fmt.Errorf("image hash %q is not 40 characters", v.Hash)
		}
	}
	return nil
}

func (r *featureValueRepository) put(feature *entity.Feature, value *entity.FeatureValue, creating bool) error {
	vt, err := r.table(feature)
	if err != nil {
		return err
	}
	if err := check(vt.featureType, value); err != nil {
		return err
	}
	if value.Id == uuid.Nil {
		value.Id = uuid.New()
	}
	for _, other := range vt.rows.rows {
		if other.Id != value.Id && other.PatternId == value.PatternId {
			return fmt.Errorf("memstore: pattern %s already has a value in %q", value.PatternId, feature.StorageName)
		}
	}
	value.FeatureId = feature.Id
	ts := now()
	if creating || value.CreatedAt.IsZero() {
		value.CreatedAt = ts
	}
	value.UpdatedAt = ts
	insert(r.store.data(), vt.rows, value.Id, *value)
	return nil
}

func (r *featureValueRepository) Create(ctx context.Context, feature *entity.Feature, value *entity.FeatureValue) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.put(feature, value, true)
}

func (r *featureValueRepository) Update(ctx context.Context, feature *entity.Feature, value *entity.FeatureValue) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.put(feature, value, false)
}

func (r *featureValueRepository) DeleteWhere(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	vt, err := r.table(feature)
	if err != nil {
		return 0, err
	}
	return deleteWhere(r.store.data(), vt.rows, valueFields, specs)
}

func (r *featureValueRepository) Count(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, feature, specs...)
	return int64(len(all)), err
}

func (r *featureValueRepository) UsageByTemplate(ctx context.Context, feature *entity.Feature) ([]entity.FeatureUsage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	d := r.store.data()
	vt, err := r.table(feature)
	if err != nil {
		return nil, err
	}
	withValue := map[uuid.UUID]bool{}
	for _, v := range vt.rows.rows {
		withValue[v.PatternId] = true
	}

	var out []entity.FeatureUsage
	for _, link := range d.links.rows {
		if link.FeatureId != feature.Id {
			continue
		}
		t, ok := d.templates.rows[link.TemplateId]
		if !ok {
			continue
		}
		usage := entity.FeatureUsage{TemplateId: t.Id, TemplateName: t.Name}
		for _, p := range d.patterns.rows {
			if p.TemplateId == t.Id && withValue[p.Id] {
				usage.ValueCount++
			}
		}
		out = append(out, usage)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateName < out[j].TemplateName })
	return out, nil
}
