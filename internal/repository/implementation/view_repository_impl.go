package implementation

import (
	"context"
	"errors"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/mapper"
	"pattern-sphere-be/internal/model"
	"pattern-sphere-be/internal/repository/contract"
	"pattern-sphere-be/internal/repository/scope"
	"pattern-sphere-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ViewRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ViewMapper
}

func NewViewRepository(db *gorm.DB) contract.ViewRepository {
	return &ViewRepositoryImpl{
		db:     db,
		mapper: mapper.NewViewMapper(),
	}
}

func (r *ViewRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ViewRepositoryImpl) Create(ctx context.Context, view *entity.PatternView) error {
	m := r.mapper.ToModel(view)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*view = *r.mapper.ToEntity(m)
	return nil
}

func (r *ViewRepositoryImpl) Update(ctx context.Context, view *entity.PatternView) error {
	m := r.mapper.ToModel(view)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateError(err)
	}
	*view = *r.mapper.ToEntity(m)
	return nil
}

func (r *ViewRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PatternView{}, "id = ?", id).Error
}

func (r *ViewRepositoryImpl) DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error) {
	res := r.applySpecifications(r.db.WithContext(ctx), specs...).Delete(&model.PatternView{})
	return res.RowsAffected, res.Error
}

func (r *ViewRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PatternView, error) {
	var m model.PatternView
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ViewRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PatternView, error) {
	var models []*model.PatternView
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByName), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ViewRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.PatternView{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
