// FILE: internal/model/feature_model.go
// GORM model for the pattern_features catalog table
package model

import (
	"time"

	"github.com/google/uuid"
)

type Feature struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Type        string    `gorm:"type:varchar(16);not null"` // integer, string, text, image
	Required    bool      `gorm:"default:false;index"`
	Notes       string    `gorm:"type:text"`
	StorageName string    `gorm:"type:varchar(63);uniqueIndex;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Feature) TableName() string {
	return "pattern_features"
}
