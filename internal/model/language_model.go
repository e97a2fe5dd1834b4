package model

import (
	"time"

	"github.com/google/uuid"
)

type PatternLanguage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PatternLanguage) TableName() string {
	return "pattern_languages"
}

type LanguageMember struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LanguageId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plang_members_pair,priority:1"`
	PatternId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plang_members_pair,priority:2;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (LanguageMember) TableName() string {
	return "plang_members"
}
