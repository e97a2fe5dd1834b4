// FILE: internal/entity/feature_entity.go
// Domain entity for features (runtime-defined typed attributes)
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type FeatureType string

const (
	FeatureTypeInteger FeatureType = "integer"
	FeatureTypeString  FeatureType = "string" // short string, up to MaxStringLength
	FeatureTypeText    FeatureType = "text"
	FeatureTypeImage   FeatureType = "image"
)

// MaxStringLength bounds values of string features.
const MaxStringLength = 255

var FeatureTypes = []FeatureType{
	FeatureTypeInteger,
	FeatureTypeString,
	FeatureTypeText,
	FeatureTypeImage,
}

func (t FeatureType) Valid() bool {
	for _, ft := range FeatureTypes {
		if t == ft {
			return true
		}
	}
	return false
}

func (t FeatureType) IsImage() bool {
	return t == FeatureTypeImage
}

// Feature is a named, typed attribute. Its values live in a dedicated
// storage table named by StorageName, which the engine generates.
type Feature struct {
	Id          uuid.UUID
	Name        string
	Type        FeatureType
	Required    bool
	Notes       string
	StorageName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StorageNameFor derives the opaque value table name for a feature id.
func StorageNameFor(id uuid.UUID) string {
	return "pf_" + strings.ReplaceAll(id.String(), "-", "")
}

// FeatureUsage counts the values a feature holds under one template.
type FeatureUsage struct {
	TemplateId   uuid.UUID
	TemplateName string
	ValueCount   int64
}
