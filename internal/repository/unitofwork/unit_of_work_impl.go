package unitofwork

import (
	"context"
	"fmt"

	"pattern-sphere-be/internal/repository/contract"
	"pattern-sphere-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

// Rollback is safe to defer after Commit: it is a no-op once the
// transaction has ended.
func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) FeatureRepository() contract.FeatureRepository {
	return implementation.NewFeatureRepository(u.getDB())
}

func (u *UnitOfWorkImpl) FeatureValueRepository() contract.FeatureValueRepository {
	return implementation.NewFeatureValueRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TemplateRepository() contract.TemplateRepository {
	return implementation.NewTemplateRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TemplateFeatureRepository() contract.TemplateFeatureRepository {
	return implementation.NewTemplateFeatureRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PatternRepository() contract.PatternRepository {
	return implementation.NewPatternRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LanguageRepository() contract.LanguageRepository {
	return implementation.NewLanguageRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LanguageMemberRepository() contract.LanguageMemberRepository {
	return implementation.NewLanguageMemberRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ViewRepository() contract.ViewRepository {
	return implementation.NewViewRepository(u.getDB())
}
