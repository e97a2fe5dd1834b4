package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByTemplateID struct {
	TemplateID uuid.UUID
}

func (s ByTemplateID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("template_id = ?", s.TemplateID)
}

type ByFeatureID struct {
	FeatureID uuid.UUID
}

func (s ByFeatureID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("feature_id = ?", s.FeatureID)
}

type ByLanguageID struct {
	LanguageID uuid.UUID
}

func (s ByLanguageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("language_id = ?", s.LanguageID)
}

type ByPatternID struct {
	PatternID uuid.UUID
}

func (s ByPatternID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pattern_id = ?", s.PatternID)
}

type ByPatternIDs struct {
	PatternIDs []uuid.UUID
}

func (s ByPatternIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pattern_id IN ?", s.PatternIDs)
}

// ByRequired filters features on their required flag.
type ByRequired struct {
	Required bool
}

func (s ByRequired) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("required = ?", s.Required)
}

// ByType filters features on their data type.
type ByType struct {
	Type string
}

func (s ByType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

// InLanguage restricts patterns to members of a language.
type InLanguage struct {
	LanguageID uuid.UUID
}

func (s InLanguage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).
			Table("plang_members").
			Select("pattern_id").
			Where("language_id = ?", s.LanguageID))
}

// InTemplate restricts value rows to patterns bound to a template.
type InTemplate struct {
	TemplateID uuid.UUID
}

func (s InTemplate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pattern_id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).
			Table("patterns").
			Select("id").
			Where("template_id = ?", s.TemplateID))
}

// ByHash matches image value rows on their content hash.
type ByHash struct {
	Hash string
}

func (s ByHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("hash = ?", s.Hash)
}
