package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTemplateRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type UpdateTemplateRequest struct {
	Id    uuid.UUID `json:"-"`
	Name  *string   `json:"name"`
	Notes *string   `json:"notes"`
}

type TemplateSummaryResponse struct {
	Id           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Notes        string    `json:"notes"`
	PatternCount int64     `json:"pattern_count"`
	FeatureCount int64     `json:"feature_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TemplateDetailResponse struct {
	Id        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Notes     string             `json:"notes"`
	Features  []*FeatureResponse `json:"features"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
