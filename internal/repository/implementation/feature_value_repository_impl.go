// FILE: internal/repository/implementation/feature_value_repository_impl.go
// Implementation of FeatureValueRepository over the per-feature value tables
package implementation

import (
	"context"
	"errors"
	"fmt"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/mapper"
	"pattern-sphere-be/internal/repository/contract"
	"pattern-sphere-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeatureValueRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeatureValueMapper
}

func NewFeatureValueRepository(db *gorm.DB) contract.FeatureValueRepository {
	return &FeatureValueRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeatureValueMapper(),
	}
}

func (r *FeatureValueRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FeatureValueRepositoryImpl) table(ctx context.Context, feature *entity.Feature) *gorm.DB {
	return r.db.WithContext(ctx).Table(feature.StorageName)
}

// CreateStorage provisions the value table of a feature with the row shape of
// its type. Runs on the caller's transaction, so a failure here discards the
// catalog row as well.
func (r *FeatureValueRepositoryImpl) CreateStorage(ctx context.Context, feature *entity.Feature) error {
	if feature.StorageName == "" {
		return fmt.Errorf("feature %s has no storage name", feature.Id)
	}
	row, err := r.mapper.NewModel(feature.Type)
	if err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	if err := db.Table(feature.StorageName).Migrator().CreateTable(row); err != nil {
		return fmt.Errorf("create value table %s: %w", feature.StorageName, err)
	}

	err = db.Exec("CREATE UNIQUE INDEX ? ON ? (pattern_id)",
		clause.Table{Name: "ux_" + feature.StorageName + "_pattern"},
		clause.Table{Name: feature.StorageName}).Error
	if err != nil {
		return fmt.Errorf("index value table %s: %w", feature.StorageName, err)
	}
	if feature.Type.IsImage() {
		err = db.Exec("CREATE INDEX ? ON ? (hash)",
			clause.Table{Name: "ix_" + feature.StorageName + "_hash"},
			clause.Table{Name: feature.StorageName}).Error
		if err != nil {
			return fmt.Errorf("index value table %s: %w", feature.StorageName, err)
		}
	}
	return nil
}

func (r *FeatureValueRepositoryImpl) DropStorage(ctx context.Context, feature *entity.Feature) error {
	if err := r.db.WithContext(ctx).Migrator().DropTable(feature.StorageName); err != nil {
		return fmt.Errorf("drop value table %s: %w", feature.StorageName, err)
	}
	return nil
}

func (r *FeatureValueRepositoryImpl) HasStorage(ctx context.Context, feature *entity.Feature) (bool, error) {
	return r.db.WithContext(ctx).Migrator().HasTable(feature.StorageName), nil
}

func (r *FeatureValueRepositoryImpl) FindByPattern(ctx context.Context, feature *entity.Feature, patternId uuid.UUID) (*entity.FeatureValue, error) {
	row, err := r.mapper.NewModel(feature.Type)
	if err != nil {
		return nil, err
	}
	if err := r.table(ctx, feature).Where("pattern_id = ?", patternId).Take(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(row), nil
}

func (r *FeatureValueRepositoryImpl) FindAll(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) ([]*entity.FeatureValue, error) {
	rows, err := r.mapper.NewModelSlice(feature.Type)
	if err != nil {
		return nil, err
	}
	query := r.applySpecifications(r.table(ctx, feature), specs...)
	if err := query.Find(rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *FeatureValueRepositoryImpl) Create(ctx context.Context, feature *entity.Feature, value *entity.FeatureValue) error {
	if value.Id == uuid.Nil {
		value.Id = uuid.New()
	}
	value.FeatureId = feature.Id
	row, err := r.mapper.ToModel(feature.Type, value)
	if err != nil {
		return err
	}
	if err := r.table(ctx, feature).Create(row).Error; err != nil {
		return err
	}
	*value = *r.mapper.ToEntity(row)
	return nil
}

func (r *FeatureValueRepositoryImpl) Update(ctx context.Context, feature *entity.Feature, value *entity.FeatureValue) error {
	row, err := r.mapper.ToModel(feature.Type, value)
	if err != nil {
		return err
	}
	if err := r.table(ctx, feature).Save(row).Error; err != nil {
		return err
	}
	*value = *r.mapper.ToEntity(row)
	return nil
}

func (r *FeatureValueRepositoryImpl) DeleteWhere(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) (int64, error) {
	row, err := r.mapper.NewModel(feature.Type)
	if err != nil {
		return 0, err
	}
	res := r.applySpecifications(r.table(ctx, feature), specs...).Delete(row)
	return res.RowsAffected, res.Error
}

func (r *FeatureValueRepositoryImpl) Count(ctx context.Context, feature *entity.Feature, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.table(ctx, feature), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FeatureValueRepositoryImpl) UsageByTemplate(ctx context.Context, feature *entity.Feature) ([]entity.FeatureUsage, error) {
	var rows []entity.FeatureUsage
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id AS template_id, t.name AS template_name, COUNT(v.id) AS value_count
		FROM pt_features tf
		JOIN pattern_templates t ON t.id = tf.template_id
		LEFT JOIN patterns p ON p.template_id = t.id
		LEFT JOIN ? v ON v.pattern_id = p.id
		WHERE tf.feature_id = ?
		GROUP BY t.id, t.name
		ORDER BY t.name ASC`,
		clause.Table{Name: feature.StorageName}, feature.Id).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
