// FILE: internal/repository/contract/feature_value_repository.go
// Repository interface for the per-feature value tables
package contract

import (
	"context"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"

	"github.com/google/uuid"
)

// FeatureValueRepository addresses the value table owned by each feature.
// Every method takes the feature so the implementation can pick the table
// and the row shape for its type.
type FeatureValueRepository interface {
	CreateStorage(ctx context.Context, feature *entity.Feature) error
	DropStorage(ctx context.Context, feature *entity.Feature) error
	HasStorage(ctx context.Context, feature *entity.Feature) (bool, error)

	// FindByPattern returns nil, nil when the pattern holds no value.
	FindByPattern(ctx context.Context, feature *entity.Feature, patternId uuid.UUID) (*entity.FeatureValue, error)
	FindAll(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) ([]*entity.FeatureValue, error)
	Create(ctx context.Context, feature *entity.Feature, value *entity.FeatureValue) error
	Update(ctx context.Context, feature *entity.Feature, value *entity.FeatureValue) error
	DeleteWhere(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) (int64, error)
	Count(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) (int64, error)
	// UsageByTemplate counts values per template the feature is attached to.
	UsageByTemplate(ctx context.Context, feature *entity.Feature) ([]entity.FeatureUsage, error)
}
