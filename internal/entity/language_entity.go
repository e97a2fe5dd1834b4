package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatternLanguage is a named grouping of patterns.
type PatternLanguage struct {
	Id        uuid.UUID
	Name      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LanguageMember struct {
	Id         uuid.UUID
	LanguageId uuid.UUID
	PatternId  uuid.UUID
	CreatedAt  time.Time
}
