package mapper

import (
	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/model"
)

type ViewMapper struct{}

func NewViewMapper() *ViewMapper {
	return &ViewMapper{}
}

func (m *ViewMapper) ToEntity(v *model.PatternView) *entity.PatternView {
	if v == nil {
		return nil
	}
	return &entity.PatternView{
		Id:         v.Id,
		TemplateId: v.TemplateId,
		Name:       v.Name,
		Notes:      v.Notes,
		Layout:     v.Layout,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func (m *ViewMapper) ToModel(v *entity.PatternView) *model.PatternView {
	if v == nil {
		return nil
	}
	return &model.PatternView{
		Id:         v.Id,
		TemplateId: v.TemplateId,
		Name:       v.Name,
		Notes:      v.Notes,
		Layout:     v.Layout,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func (m *ViewMapper) ToEntities(views []*model.PatternView) []*entity.PatternView {
	entities := make([]*entity.PatternView, len(views))
	for i, v := range views {
		entities[i] = m.ToEntity(v)
	}
	return entities
}
