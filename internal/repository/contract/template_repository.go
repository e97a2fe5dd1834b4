package contract

import (
	"context"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *entity.Template) error
	Update(ctx context.Context, template *entity.Template) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Template, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Template, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type TemplateFeatureRepository interface {
	Create(ctx context.Context, link *entity.TemplateFeature) error
	DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TemplateFeature, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// CountGroupedByTemplate returns the number of features per template id.
	CountGroupedByTemplate(ctx context.Context) (map[uuid.UUID]int64, error)
}
