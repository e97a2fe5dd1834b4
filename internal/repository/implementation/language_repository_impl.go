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

type LanguageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LanguageMapper
}

func NewLanguageRepository(db *gorm.DB) contract.LanguageRepository {
	return &LanguageRepositoryImpl{
		db:     db,
		mapper: mapper.NewLanguageMapper(),
	}
}

func (r *LanguageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LanguageRepositoryImpl) Create(ctx context.Context, language *entity.PatternLanguage) error {
	m := r.mapper.ToModel(language)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*language = *r.mapper.ToEntity(m)
	return nil
}

func (r *LanguageRepositoryImpl) Update(ctx context.Context, language *entity.PatternLanguage) error {
	m := r.mapper.ToModel(language)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateError(err)
	}
	*language = *r.mapper.ToEntity(m)
	return nil
}

func (r *LanguageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PatternLanguage{}, "id = ?", id).Error
}

func (r *LanguageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PatternLanguage, error) {
	var m model.PatternLanguage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LanguageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PatternLanguage, error) {
	var models []*model.PatternLanguage
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByName), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *LanguageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.PatternLanguage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type LanguageMemberRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LanguageMapper
}

func NewLanguageMemberRepository(db *gorm.DB) contract.LanguageMemberRepository {
	return &LanguageMemberRepositoryImpl{
		db:     db,
		mapper: mapper.NewLanguageMapper(),
	}
}

func (r *LanguageMemberRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LanguageMemberRepositoryImpl) Create(ctx context.Context, member *entity.LanguageMember) error {
	m := &model.LanguageMember{
		Id:         member.Id,
		LanguageId: member.LanguageId,
		PatternId:  member.PatternId,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*member = *r.mapper.MemberToEntity(m)
	return nil
}

func (r *LanguageMemberRepositoryImpl) DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error) {
	res := r.applySpecifications(r.db.WithContext(ctx), specs...).Delete(&model.LanguageMember{})
	return res.RowsAffected, res.Error
}

func (r *LanguageMemberRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LanguageMember, error) {
	var models []*model.LanguageMember
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MembersToEntities(models), nil
}

func (r *LanguageMemberRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.LanguageMember{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LanguageMemberRepositoryImpl) CountGroupedByLanguage(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(&model.LanguageMember{}).
		Select("language_id AS group_id, COUNT(*) AS total").
		Group("language_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}
