package memstore

import (
	"context"
	"fmt"

	"pattern-sphere-be/internal/repository/contract"
)

type unitOfWork struct {
	store  *Store
	work   *dataset
	active bool
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.txMu.Lock()
	u.store.mu.RLock()
	u.work = u.store.data.clone()
	u.store.mu.RUnlock()
	u.active = true
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.mu.Lock()
	u.store.data = u.work
	u.store.mu.Unlock()
	u.work = nil
	u.active = false
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.work = nil
	u.active = false
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) view() *dataView {
	return &dataView{store: u.store, uow: u, mu: &u.store.mu}
}

func (u *unitOfWork) FeatureRepository() contract.FeatureRepository {
	return &featureRepository{store: u.view()}
}

func (u *unitOfWork) FeatureValueRepository() contract.FeatureValueRepository {
	return &featureValueRepository{store: u.view()}
}

func (u *unitOfWork) TemplateRepository() contract.TemplateRepository {
	return &templateRepository{store: u.view()}
}

func (u *unitOfWork) TemplateFeatureRepository() contract.TemplateFeatureRepository {
	return &templateFeatureRepository{store: u.view()}
}

func (u *unitOfWork) PatternRepository() contract.PatternRepository {
	return &patternRepository{store: u.view()}
}

func (u *unitOfWork) LanguageRepository() contract.LanguageRepository {
	return &languageRepository{store: u.view()}
}

func (u *unitOfWork) LanguageMemberRepository() contract.LanguageMemberRepository {
	return &languageMemberRepository{store: u.view()}
}

func (u *unitOfWork) ViewRepository() contract.ViewRepository {
	return &viewRepository{store: u.view()}
}
