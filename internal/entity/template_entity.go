package entity

import (
	"time"

	"github.com/google/uuid"
)

// Template is a named schema: a set of features.
type Template struct {
	Id        uuid.UUID
	Name      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TemplateFeature associates a feature with a template.
type TemplateFeature struct {
	Id         uuid.UUID
	TemplateId uuid.UUID
	FeatureId  uuid.UUID
	CreatedAt  time.Time
}
