package unitofwork

import (
	"context"

	"pattern-sphere-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	FeatureRepository() contract.FeatureRepository
	FeatureValueRepository() contract.FeatureValueRepository
	TemplateRepository() contract.TemplateRepository
	TemplateFeatureRepository() contract.TemplateFeatureRepository
	PatternRepository() contract.PatternRepository
	LanguageRepository() contract.LanguageRepository
	LanguageMemberRepository() contract.LanguageMemberRepository
	ViewRepository() contract.ViewRepository
}
