package contract

import (
	"context"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ViewRepository interface {
	Create(ctx context.Context, view *entity.PatternView) error
	Update(ctx context.Context, view *entity.PatternView) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PatternView, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PatternView, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
