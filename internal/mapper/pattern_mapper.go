package mapper

import (
	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/model"
)

type PatternMapper struct{}

func NewPatternMapper() *PatternMapper {
	return &PatternMapper{}
}

func (m *PatternMapper) ToEntity(p *model.Pattern) *entity.Pattern {
	if p == nil {
		return nil
	}
	return &entity.Pattern{
		Id:         p.Id,
		TemplateId: p.TemplateId,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (m *PatternMapper) ToModel(p *entity.Pattern) *model.Pattern {
	if p == nil {
		return nil
	}
	return &model.Pattern{
		Id:         p.Id,
		TemplateId: p.TemplateId,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (m *PatternMapper) ToEntities(patterns []*model.Pattern) []*entity.Pattern {
	entities := make([]*entity.Pattern, len(patterns))
	for i, p := range patterns {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
