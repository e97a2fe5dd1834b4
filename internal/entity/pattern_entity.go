package entity

import (
	"time"

	"github.com/google/uuid"
)

// Pattern is a record bound to one template. Its values are stored per
// feature, see FeatureValue.
type Pattern struct {
	Id         uuid.UUID
	TemplateId uuid.UUID
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FeatureValue is one row in a feature's value table. Scalar features use
// Value (integers in base 10); image features use Filename, AltText and Hash.
type FeatureValue struct {
	Id        uuid.UUID
	PatternId uuid.UUID
	FeatureId uuid.UUID
	Value     string
	Filename  string
	AltText   string
	Hash      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
