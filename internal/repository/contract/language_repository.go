package contract

import (
	"context"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"

	"github.com/google/uuid"
)

type LanguageRepository interface {
	Create(ctx context.Context, language *entity.PatternLanguage) error
	Update(ctx context.Context, language *entity.PatternLanguage) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PatternLanguage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PatternLanguage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type LanguageMemberRepository interface {
	Create(ctx context.Context, member *entity.LanguageMember) error
	DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LanguageMember, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountGroupedByLanguage(ctx context.Context) (map[uuid.UUID]int64, error)
}
