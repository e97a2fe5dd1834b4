package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateLanguageRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type UpdateLanguageRequest struct {
	Id    uuid.UUID `json:"-"`
	Name  *string   `json:"name"`
	Notes *string   `json:"notes"`
}

type LanguageResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Notes       string    `json:"notes"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateLanguageResponse struct {
	Id      uuid.UUID `json:"id"`
	Changed bool      `json:"changed"`
}

type LanguageMembersResponse struct {
	LanguageId uuid.UUID   `json:"language_id"`
	PatternIds []uuid.UUID `json:"pattern_ids"`
}

type ReconcileMembersRequest struct {
	LanguageId uuid.UUID   `json:"-"`
	PatternIds []uuid.UUID `json:"pattern_ids"`
}

type ReconcileMembersResponse struct {
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
}
