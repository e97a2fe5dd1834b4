package mapper

import (
	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/model"
)

type TemplateMapper struct{}

func NewTemplateMapper() *TemplateMapper {
	return &TemplateMapper{}
}

func (m *TemplateMapper) ToEntity(t *model.Template) *entity.Template {
	if t == nil {
		return nil
	}
	return &entity.Template{
		Id:        t.Id,
		Name:      t.Name,
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *TemplateMapper) ToModel(t *entity.Template) *model.Template {
	if t == nil {
		return nil
	}
	return &model.Template{
		Id:        t.Id,
		Name:      t.Name,
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *TemplateMapper) ToEntities(templates []*model.Template) []*entity.Template {
	entities := make([]*entity.Template, len(templates))
	for i, t := range templates {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

func (m *TemplateMapper) LinkToEntity(l *model.TemplateFeature) *entity.TemplateFeature {
	if l == nil {
		return nil
	}
	return &entity.TemplateFeature{
		Id:         l.Id,
		TemplateId: l.TemplateId,
		FeatureId:  l.FeatureId,
		CreatedAt:  l.CreatedAt,
	}
}

func (m *TemplateMapper) LinkToModel(l *entity.TemplateFeature) *model.TemplateFeature {
	if l == nil {
		return nil
	}
	return &model.TemplateFeature{
		Id:         l.Id,
		TemplateId: l.TemplateId,
		FeatureId:  l.FeatureId,
		CreatedAt:  l.CreatedAt,
	}
}

func (m *TemplateMapper) LinksToEntities(links []*model.TemplateFeature) []*entity.TemplateFeature {
	entities := make([]*entity.TemplateFeature, len(links))
	for i, l := range links {
		entities[i] = m.LinkToEntity(l)
	}
	return entities
}
