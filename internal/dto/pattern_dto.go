package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListPatternsRequest struct {
	TemplateId *uuid.UUID
	LanguageId *uuid.UUID
}

// ImageUpload carries the raw bytes of an uploaded image part.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// FieldInput is the submitted state of one feature. Scalars use Value;
// images use AltText plus an optional Upload.
type FieldInput struct {
	Value   string       `json:"value"`
	AltText string       `json:"alt_text"`
	Upload  *ImageUpload `json:"-"`
}

type InsertPatternRequest struct {
	TemplateId uuid.UUID             `json:"template_id" validate:"required"`
	Notes      string                `json:"notes"`
	Values     map[string]FieldInput `json:"values"`
}

// UpdatePatternRequest carries updates and inserts in Values and explicit
// removals in Deletes. A nil Notes leaves the notes unchanged.
type UpdatePatternRequest struct {
	Id      uuid.UUID             `json:"-"`
	Notes   *string               `json:"notes"`
	Values  map[string]FieldInput `json:"values"`
	Deletes []string              `json:"deletes"`
}

type PatternSummaryResponse struct {
	Id           uuid.UUID `json:"id"`
	TemplateId   uuid.UUID `json:"template_id"`
	TemplateName string    `json:"template_name"`
	Title        string    `json:"title"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PatternFeatureResponse is one entry of a pattern's feature map. Value
// fields are nil when the pattern holds no value for the feature.
type PatternFeatureResponse struct {
	FeatureId uuid.UUID `json:"feature_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Required  bool      `json:"required"`
	Value     *string   `json:"value,omitempty"`
	AltText   *string   `json:"alttext,omitempty"`
	Filename  *string   `json:"filename,omitempty"`
	Hash      *string   `json:"hash,omitempty"`
	URL       *string   `json:"url,omitempty"`
}

type PatternDetailResponse struct {
	Id           uuid.UUID                          `json:"id"`
	TemplateId   uuid.UUID                          `json:"template_id"`
	TemplateName string                             `json:"template_name"`
	Notes        string                             `json:"notes"`
	Features     map[string]*PatternFeatureResponse `json:"features"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
}

type UpdatePatternResponse struct {
	Id      uuid.UUID `json:"id"`
	Changed bool      `json:"changed"`
}
