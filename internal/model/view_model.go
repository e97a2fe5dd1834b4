package model

import (
	"time"

	"github.com/google/uuid"
)

type PatternView struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TemplateId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pattern_views_template_name,priority:1"`
	Name       string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_pattern_views_template_name,priority:2"`
	Notes      string    `gorm:"type:text"`
	Layout     *string   `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (PatternView) TableName() string {
	return "pattern_views"
}

// CatalogModels lists every fixed table for AutoMigrate.
func CatalogModels() []interface{} {
	return []interface{}{
		&Feature{},
		&Template{},
		&TemplateFeature{},
		&Pattern{},
		&PatternLanguage{},
		&LanguageMember{},
		&PatternView{},
	}
}
