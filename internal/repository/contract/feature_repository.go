// FILE: internal/repository/contract/feature_repository.go
// Repository interface for Feature (schema catalog)
package contract

import (
	"context"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FeatureRepository interface {
	Create(ctx context.Context, feature *entity.Feature) error
	Update(ctx context.Context, feature *entity.Feature) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error)
	// FindByTemplate resolves the live feature set of a template, ordered by name.
	FindByTemplate(ctx context.Context, templateId uuid.UUID) ([]*entity.Feature, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
