// FILE: internal/model/feature_value_model.go
// Row shapes of the per-feature value tables. These models have no fixed
// table: every query names the feature's storage table explicitly, and
// indexes are created by the repository when the table is provisioned.
package model

import (
	"time"

	"github.com/google/uuid"
)

type IntegerValue struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PatternId uuid.UUID `gorm:"type:uuid;not null"`
	FeatureId uuid.UUID `gorm:"type:uuid;not null"`
	Value     int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type StringValue struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PatternId uuid.UUID `gorm:"type:uuid;not null"`
	FeatureId uuid.UUID `gorm:"type:uuid;not null"`
	Value     string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type TextValue struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PatternId uuid.UUID `gorm:"type:uuid;not null"`
	FeatureId uuid.UUID `gorm:"type:uuid;not null"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type ImageValue struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PatternId uuid.UUID `gorm:"type:uuid;not null"`
	FeatureId uuid.UUID `gorm:"type:uuid;not null"`
	Filename  string    `gorm:"type:varchar(255)"`
	AltText   string    `gorm:"column:alt_text;type:varchar(1023);not null"`
	Hash      string    `gorm:"type:char(40);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
