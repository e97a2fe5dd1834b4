package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListViewsRequest struct {
	TemplateId *uuid.UUID
}

// LayoutUpload is an uploaded layout file. It must sniff as HTML.
type LayoutUpload struct {
	Filename string
	Data     []byte
}

type CreateViewRequest struct {
	TemplateId uuid.UUID     `json:"template_id" validate:"required"`
	Name       string        `json:"name" validate:"max=255"`
	Notes      string        `json:"notes"`
	Layout     *string       `json:"layout"`
	LayoutFile *LayoutUpload `json:"-"`
}

// UpdateViewRequest leaves the layout unchanged unless Layout, LayoutFile or
// ClearLayout is given. A file wins over raw text.
type UpdateViewRequest struct {
	Id          uuid.UUID     `json:"-"`
	Name        *string       `json:"name" validate:"omitempty,max=255"`
	Notes       *string       `json:"notes"`
	Layout      *string       `json:"layout"`
	LayoutFile  *LayoutUpload `json:"-"`
	ClearLayout bool          `json:"clear_layout"`
}

type ViewResponse struct {
	Id         uuid.UUID `json:"id"`
	TemplateId uuid.UUID `json:"template_id"`
	Name       string    `json:"name"`
	Notes      string    `json:"notes"`
	Layout     *string   `json:"layout"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type LintResponse struct {
	FoundInBoth  []string `json:"found_in_both"`
	LayoutOnly   []string `json:"layout_only"`
	TemplateOnly []string `json:"template_only"`
	Clean        bool     `json:"clean"`
}

type SaveViewResponse struct {
	View *ViewResponse `json:"view"`
	Lint *LintResponse `json:"lint"`
}

type LayoutDownload struct {
	Filename string
	Content  string
}
