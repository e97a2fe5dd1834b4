package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatternView is a template-scoped layout with %%token%% placeholders. A nil
// Layout is valid and renders nothing.
type PatternView struct {
	Id         uuid.UUID
	TemplateId uuid.UUID
	Name       string
	Notes      string
	Layout     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
