// FILE: internal/mapper/feature_mapper.go
// Mapper for Feature entity <-> model conversion
package mapper

import (
	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/model"
)

type FeatureMapper struct{}

func NewFeatureMapper() *FeatureMapper {
	return &FeatureMapper{}
}

func (m *FeatureMapper) ToEntity(f *model.Feature) *entity.Feature {
	if f == nil {
		return nil
	}
	return &entity.Feature{
		Id:          f.Id,
		Name:        f.Name,
		Type:        entity.FeatureType(f.Type),
		Required:    f.Required,
		Notes:       f.Notes,
		StorageName: f.StorageName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (m *FeatureMapper) ToModel(f *entity.Feature) *model.Feature {
	if f == nil {
		return nil
	}
	return &model.Feature{
		Id:          f.Id,
		Name:        f.Name,
		Type:        string(f.Type),
		Required:    f.Required,
		Notes:       f.Notes,
		StorageName: f.StorageName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (m *FeatureMapper) ToEntities(features []*model.Feature) []*entity.Feature {
	entities := make([]*entity.Feature, len(features))
	for i, f := range features {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
