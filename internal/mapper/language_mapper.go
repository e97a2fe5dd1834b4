package mapper

import (
	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/model"
)

type LanguageMapper struct{}

func NewLanguageMapper() *LanguageMapper {
	return &LanguageMapper{}
}

func (m *LanguageMapper) ToEntity(l *model.PatternLanguage) *entity.PatternLanguage {
	if l == nil {
		return nil
	}
	return &entity.PatternLanguage{
		Id:        l.Id,
		Name:      l.Name,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func (m *LanguageMapper) ToModel(l *entity.PatternLanguage) *model.PatternLanguage {
	if l == nil {
		return nil
	}
	return &model.PatternLanguage{
		Id:        l.Id,
		Name:      l.Name,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func (m *LanguageMapper) ToEntities(languages []*model.PatternLanguage) []*entity.PatternLanguage {
	entities := make([]*entity.PatternLanguage, len(languages))
	for i, l := range languages {
		entities[i] = m.ToEntity(l)
	}
	return entities
}

func (m *LanguageMapper) MemberToEntity(mb *model.LanguageMember) *entity.LanguageMember {
	if mb == nil {
		return nil
	}
	return &entity.LanguageMember{
		Id:         mb.Id,
		LanguageId: mb.LanguageId,
		PatternId:  mb.PatternId,
		CreatedAt:  mb.CreatedAt,
	}
}

func (m *LanguageMapper) MembersToEntities(members []*model.LanguageMember) []*entity.LanguageMember {
	entities := make([]*entity.LanguageMember, len(members))
	for i, mb := range members {
		entities[i] = m.MemberToEntity(mb)
	}
	return entities
}
