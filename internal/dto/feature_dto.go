package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListFeaturesRequest struct {
	Required *bool
	Type     string
}

type CreateFeatureRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type" validate:"required,oneof=integer string text image"`
	Required bool   `json:"required"`
	Notes    string `json:"notes"`
}

// UpdateFeatureRequest is a patch: nil fields are left unchanged.
type UpdateFeatureRequest struct {
	Id       uuid.UUID `json:"-"`
	Name     *string   `json:"name"`
	Type     *string   `json:"type" validate:"omitempty,oneof=integer string text image"`
	Required *bool     `json:"required"`
	Notes    *string   `json:"notes"`
}

type FeatureResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Required  bool      `json:"required"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FeatureUsageResponse struct {
	TemplateId   uuid.UUID `json:"template_id"`
	TemplateName string    `json:"template_name"`
	ValueCount   int64     `json:"value_count"`
}

type FeatureStatsResponse struct {
	FeatureId  uuid.UUID              `json:"feature_id"`
	Usage      []FeatureUsageResponse `json:"usage"`
	TotalCount int64                  `json:"total_count"`
	// TypeLocked is true while any value exists; the type cannot change then.
	TypeLocked bool `json:"type_locked"`
}
