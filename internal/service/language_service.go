package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/internal/repository/specification"
	"pattern-sphere-be/internal/repository/unitofwork"
	"pattern-sphere-be/pkg/apperror"
	"pattern-sphere-be/pkg/events"

	"github.com/google/uuid"
)

const languageModule = "LanguageService"

const maxLanguageName = 255

type ILanguageService interface {
	List(ctx context.Context) ([]*dto.LanguageResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.LanguageResponse, error)
	Create(ctx context.Context, req *dto.CreateLanguageRequest) (*dto.LanguageResponse, error)
	Update(ctx context.Context, req *dto.UpdateLanguageRequest) (*dto.UpdateLanguageResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Members(ctx context.Context, id uuid.UUID) (*dto.LanguageMembersResponse, error)
	// ReconcileMembers makes the membership of a language equal to the
	// requested set of patterns.
	ReconcileMembers(ctx context.Context, req *dto.ReconcileMembersRequest) (*dto.ReconcileMembersResponse, error)
}

type languageService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewLanguageService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) ILanguageService {
	return &languageService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
	}
}

func (s *languageService) List(ctx context.Context) ([]*dto.LanguageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	languages, err := uow.LanguageRepository().FindAll(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, languageModule, "List", err)
	}
	counts, err := uow.LanguageMemberRepository().CountGroupedByLanguage(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, languageModule, "List", err)
	}

	result := make([]*dto.LanguageResponse, 0, len(languages))
	for _, l := range languages {
		result = append(result, toLanguageResponse(l, counts[l.Id]))
	}
	return result, nil
}

func (s *languageService) Show(ctx context.Context, id uuid.UUID) (*dto.LanguageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	language, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	members, err := uow.LanguageMemberRepository().Count(ctx, specification.ByLanguageID{LanguageID: language.Id})
	if err != nil {
		return nil, storageFailure(s.logger, languageModule, "Show", err)
	}
	return toLanguageResponse(language, members), nil
}

func (s *languageService) Create(ctx context.Context, req *dto.CreateLanguageRequest) (*dto.LanguageResponse, error) {
	name, err := languageName(req.Name)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, languageModule, "Create", err)
	}
	defer uow.Rollback()

	existing, err := uow.LanguageRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return nil, storageFailure(s.logger, languageModule, "Create", err)
	}
	if existing != nil {
		return nil, apperror.DuplicateName("language name %q already in use", name)
	}

	language := &entity.PatternLanguage{Id: uuid.New(), Name: name, Notes: req.Notes}
	if err := uow.LanguageRepository().Create(ctx, language); err != nil {
		return nil, storageFailure(s.logger, languageModule, "Create", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, languageModule, "Create", err)
	}

	s.logger.Info(languageModule, "language created", map[string]interface{}{"id": language.Id, "name": language.Name})
	publish(ctx, s.publisher, s.logger, languageModule, events.New(events.LanguageCreated, map[string]interface{}{
		"language_id": language.Id,
		"name":        language.Name,
	}))
	return toLanguageResponse(language, 0), nil
}

func (s *languageService) Update(ctx context.Context, req *dto.UpdateLanguageRequest) (*dto.UpdateLanguageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, languageModule, "Update", err)
	}
	defer uow.Rollback()

	language, err := s.find(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != nil {
		name, err := languageName(*req.Name)
		if err != nil {
			return nil, err
		}
		if name != language.Name {
			clash, err := uow.LanguageRepository().FindOne(ctx, specification.ByName{Name: name}, specification.ExcludeID{ID: language.Id})
			if err != nil {
				return nil, storageFailure(s.logger, languageModule, "Update", err)
			}
			if clash != nil {
				return nil, apperror.DuplicateName("language name %q already in use", name)
			}
			language.Name = name
			changed = true
		}
	}
	if req.Notes != nil && *req.Notes != language.Notes {
		language.Notes = *req.Notes
		changed = true
	}
	if !changed {
		return &dto.UpdateLanguageResponse{Id: language.Id, Changed: false}, nil
	}

	if err := uow.LanguageRepository().Update(ctx, language); err != nil {
		return nil, storageFailure(s.logger, languageModule, "Update", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, languageModule, "Update", err)
	}

	s.logger.Info(languageModule, "language updated", map[string]interface{}{"id": language.Id, "name": language.Name})
	publish(ctx, s.publisher, s.logger, languageModule, events.New(events.LanguageUpdated, map[string]interface{}{
		"language_id": language.Id,
		"name":        language.Name,
	}))
	return &dto.UpdateLanguageResponse{Id: language.Id, Changed: true}, nil
}

func (s *languageService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageFailure(s.logger, languageModule, "Delete", err)
	}
	defer uow.Rollback()

	language, err := s.find(ctx, uow, id)
	if err != nil {
		return err
	}
	removed, err := uow.LanguageMemberRepository().DeleteWhere(ctx, specification.ByLanguageID{LanguageID: language.Id})
	if err != nil {
		return storageFailure(s.logger, languageModule, "Delete", err)
	}
	if err := uow.LanguageRepository().Delete(ctx, language.Id); err != nil {
		return storageFailure(s.logger, languageModule, "Delete", err)
	}
	if err := uow.Commit(); err != nil {
		return storageFailure(s.logger, languageModule, "Delete", err)
	}

	s.logger.Info(languageModule, "language deleted", map[string]interface{}{
		"id":      language.Id,
		"name":    language.Name,
		"members": removed,
	})
	publish(ctx, s.publisher, s.logger, languageModule, events.New(events.LanguageDeleted, map[string]interface{}{
		"language_id": language.Id,
		"name":        language.Name,
	}))
	return nil
}

func (s *languageService) Members(ctx context.Context, id uuid.UUID) (*dto.LanguageMembersResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	language, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	members, err := uow.LanguageMemberRepository().FindAll(ctx, specification.ByLanguageID{LanguageID: language.Id})
	if err != nil {
		return nil, storageFailure(s.logger, languageModule, "Members", err)
	}

	res := &dto.LanguageMembersResponse{
		LanguageId: language.Id,
		PatternIds: make([]uuid.UUID, 0, len(members)),
	}
	for _, m := range members {
		res.PatternIds = append(res.PatternIds, m.PatternId)
	}
	return res, nil
}

// ReconcileMembers inserts desired minus current and deletes current minus
// desired. Unknown pattern ids fail the call before anything is written.
func (s *languageService) ReconcileMembers(ctx context.Context, req *dto.ReconcileMembersRequest) (*dto.ReconcileMembersResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, languageModule, "ReconcileMembers", err)
	}
	defer uow.Rollback()

	language, err := s.find(ctx, uow, req.LanguageId)
	if err != nil {
		return nil, err
	}

	desired := make(map[uuid.UUID]struct{}, len(req.PatternIds))
	for _, id := range req.PatternIds {
		desired[id] = struct{}{}
	}
	if len(desired) > 0 {
		ids := make([]uuid.UUID, 0, len(desired))
		for id := range desired {
			ids = append(ids, id)
		}
		found, err := uow.PatternRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
		if err != nil {
			return nil, storageFailure(s.logger, languageModule, "ReconcileMembers", err)
		}
		if len(found) != len(ids) {
			known := make(map[uuid.UUID]struct{}, len(found))
			for _, p := range found {
				known[p.Id] = struct{}{}
			}
			for _, id := range ids {
				if _, ok := known[id]; !ok {
					return nil, apperror.NotFound("pattern", id)
				}
			}
		}
	}

	members, err := uow.LanguageMemberRepository().FindAll(ctx, specification.ByLanguageID{LanguageID: language.Id})
	if err != nil {
		return nil, storageFailure(s.logger, languageModule, "ReconcileMembers", err)
	}
	current := make(map[uuid.UUID]struct{}, len(members))
	var stale []uuid.UUID
	for _, m := range members {
		current[m.PatternId] = struct{}{}
		if _, keep := desired[m.PatternId]; !keep {
			stale = append(stale, m.PatternId)
		}
	}

	res := &dto.ReconcileMembersResponse{}
	if len(stale) > 0 {
		n, err := uow.LanguageMemberRepository().DeleteWhere(ctx,
			specification.ByLanguageID{LanguageID: language.Id},
			specification.ByPatternIDs{PatternIDs: stale},
		)
		if err != nil {
			return nil, storageFailure(s.logger, languageModule, "ReconcileMembers", err)
		}
		res.Deleted = int(n)
	}
	for _, id := range req.PatternIds {
		if _, ok := current[id]; ok {
			continue
		}
		current[id] = struct{}{}
		member := &entity.LanguageMember{Id: uuid.New(), LanguageId: language.Id, PatternId: id}
		if err := uow.LanguageMemberRepository().Create(ctx, member); err != nil {
			return nil, storageFailure(s.logger, languageModule, "ReconcileMembers", err)
		}
		res.Inserted++
	}

	if res.Inserted == 0 && res.Deleted == 0 {
		return res, nil
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, languageModule, "ReconcileMembers", err)
	}

	s.logger.Info(languageModule, "language members reconciled", map[string]interface{}{
		"id":       language.Id,
		"inserted": res.Inserted,
		"deleted":  res.Deleted,
	})
	publish(ctx, s.publisher, s.logger, languageModule, events.New(events.LanguageMembersReconciled, map[string]interface{}{
		"language_id": language.Id,
		"inserted":    res.Inserted,
		"deleted":     res.Deleted,
	}))
	return res, nil
}

func (s *languageService) find(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.PatternLanguage, error) {
	language, err := uow.LanguageRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFailure(s.logger, languageModule, "find", err)
	}
	if language == nil {
		return nil, apperror.NotFound("language", id)
	}
	return language, nil
}

// languageName trims name and checks it is non-empty and fits the column.
// Language names are display names, not identifiers.
func languageName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validation("language name is required")
	}
	if utf8.RuneCountInString(name) > maxLanguageName {
		return "", apperror.Validation("language name is limited to %d characters", maxLanguageName)
	}
	return name, nil
}

func toLanguageResponse(l *entity.PatternLanguage, members int64) *dto.LanguageResponse {
	return &dto.LanguageResponse{
		Id:          l.Id,
		Name:        l.Name,
		Notes:       l.Notes,
		MemberCount: members,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
