package model

import (
	"time"

	"github.com/google/uuid"
)

type Template struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Template) TableName() string {
	return "pattern_templates"
}

// TemplateFeature is the explicit join table between templates and features.
type TemplateFeature struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TemplateId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pt_features_pair,priority:1"`
	FeatureId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pt_features_pair,priority:2;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (TemplateFeature) TableName() string {
	return "pt_features"
}
