package model

import (
	"time"

	"github.com/google/uuid"
)

type Pattern struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TemplateId uuid.UUID `gorm:"type:uuid;not null;index"`
	Notes      string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Pattern) TableName() string {
	return "patterns"
}
