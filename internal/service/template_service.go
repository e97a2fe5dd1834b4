// FILE: internal/service/template_service.go
package service

import (
	"context"
	"strings"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/internal/repository/memory"
	"pattern-sphere-be/internal/repository/specification"
	"pattern-sphere-be/internal/repository/unitofwork"
	"pattern-sphere-be/pkg/apperror"
	"pattern-sphere-be/pkg/events"
	"pattern-sphere-be/pkg/identifier"

	"github.com/google/uuid"
)

const templateModule = "TemplateService"

type ITemplateService interface {
	List(ctx context.Context) ([]*dto.TemplateSummaryResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.TemplateDetailResponse, error)
	Create(ctx context.Context, req *dto.CreateTemplateRequest) (*dto.TemplateDetailResponse, error)
	Update(ctx context.Context, req *dto.UpdateTemplateRequest) (*dto.TemplateDetailResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachFeature(ctx context.Context, templateId, featureId uuid.UUID) error
	// DetachFeature removes the association and every value of the feature
	// held by patterns of the template. It returns the number of values lost.
	DetachFeature(ctx context.Context, templateId, featureId uuid.UUID) (int64, error)
	CountFeatureValues(ctx context.Context, templateId, featureId uuid.UUID) (int64, error)
}

type templateService struct {
	uowFactory  unitofwork.RepositoryFactory
	blobs       BlobStore
	schemaCache *memory.SchemaCache
	publisher   events.Publisher
	logger      logger.ILogger
}

func NewTemplateService(
	uowFactory unitofwork.RepositoryFactory,
	blobs BlobStore,
	schemaCache *memory.SchemaCache,
	publisher events.Publisher,
	log logger.ILogger,
) ITemplateService {
	return &templateService{
		uowFactory:  uowFactory,
		blobs:       blobs,
		schemaCache: schemaCache,
		publisher:   publisher,
		logger:      log,
	}
}

// List computes the pattern and feature counts from the current rows on
// every call.
func (s *templateService) List(ctx context.Context) ([]*dto.TemplateSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	templates, err := uow.TemplateRepository().FindAll(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "List", err)
	}
	patternCounts, err := uow.PatternRepository().CountGroupedByTemplate(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "List", err)
	}
	featureCounts, err := uow.TemplateFeatureRepository().CountGroupedByTemplate(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "List", err)
	}

	result := make([]*dto.TemplateSummaryResponse, 0, len(templates))
	for _, t := range templates {
		result = append(result, &dto.TemplateSummaryResponse{
			Id:           t.Id,
			Name:         t.Name,
			Notes:        t.Notes,
			PatternCount: patternCounts[t.Id],
			FeatureCount: featureCounts[t.Id],
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
		})
	}
	return result, nil
}

func (s *templateService) Show(ctx context.Context, id uuid.UUID) (*dto.TemplateDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "Show", err)
	}
	if template == nil {
		return nil, apperror.NotFound("template", id)
	}
	features, err := cachedTemplateFeatures(ctx, uow, s.schemaCache, template.Id)
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "Show", err)
	}
	return toTemplateDetail(template, features), nil
}

func (s *templateService) Create(ctx context.Context, req *dto.CreateTemplateRequest) (*dto.TemplateDetailResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := identifier.Validate(name); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, templateModule, "Create", err)
	}
	defer uow.Rollback()

	existing, err := uow.TemplateRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "Create", err)
	}
	if existing != nil {
		return nil, apperror.DuplicateName("template name %q already in use", name)
	}

	template := &entity.Template{Id: uuid.New(), Name: name, Notes: req.Notes}
	if err := uow.TemplateRepository().Create(ctx, template); err != nil {
		return nil, storageFailure(s.logger, templateModule, "Create", err)
	}

	required, err := uow.FeatureRepository().FindAll(ctx, specification.ByRequired{Required: true})
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "Create", err)
	}
	for _, f := range required {
		link := &entity.TemplateFeature{Id: uuid.New(), TemplateId: template.Id, FeatureId: f.Id}
		if err := uow.TemplateFeatureRepository().Create(ctx, link); err != nil {
			return nil, storageFailure(s.logger, templateModule, "Create", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, templateModule, "Create", err)
	}
	flushSchema(s.schemaCache)

	s.logger.Info(templateModule, "template created", map[string]interface{}{
		"id":       template.Id,
		"name":     template.Name,
		"required": len(required),
	})
	publish(ctx, s.publisher, s.logger, templateModule, events.New(events.TemplateCreated, map[string]interface{}{
		"template_id": template.Id,
		"name":        template.Name,
	}))
	return toTemplateDetail(template, required), nil
}

func (s *templateService) Update(ctx context.Context, req *dto.UpdateTemplateRequest) (*dto.TemplateDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, templateModule, "Update", err)
	}
	defer uow.Rollback()

	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "Update", err)
	}
	if template == nil {
		return nil, apperror.NotFound("template", req.Id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := identifier.Validate(name); err != nil {
			return nil, err
		}
		if name != template.Name {
			clash, err := uow.TemplateRepository().FindOne(ctx, specification.ByName{Name: name}, specification.ExcludeID{ID: template.Id})
			if err != nil {
				return nil, storageFailure(s.logger, templateModule, "Update", err)
			}
			if clash != nil {
				return nil, apperror.DuplicateName("template name %q already in use", name)
			}
			template.Name = name
		}
	}
	if req.Notes != nil {
		template.Notes = *req.Notes
	}

	if err := uow.TemplateRepository().Update(ctx, template); err != nil {
		return nil, storageFailure(s.logger, templateModule, "Update", err)
	}
	features, err := uow.FeatureRepository().FindByTemplate(ctx, template.Id)
	if err != nil {
		return nil, storageFailure(s.logger, templateModule, "Update", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, templateModule, "Update", err)
	}

	s.logger.Info(templateModule, "template updated", map[string]interface{}{"id": template.Id, "name": template.Name})
	publish(ctx, s.publisher, s.logger, templateModule, events.New(events.TemplateUpdated, map[string]interface{}{
		"template_id": template.Id,
		"name":        template.Name,
	}))
	return toTemplateDetail(template, features), nil
}

// Delete cascades to the template's associations, views and patterns,
// including the patterns' values and language memberships.
func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	sweep := newBlobSweep(s.uowFactory, s.blobs, s.logger, templateModule)
	defer sweep.Abort(ctx)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}
	defer uow.Rollback()

	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}
	if template == nil {
		return apperror.NotFound("template", id)
	}

	patterns, err := uow.PatternRepository().FindAll(ctx, specification.ByTemplateID{TemplateID: template.Id})
	if err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}
	patternIds := make([]uuid.UUID, len(patterns))
	for i, p := range patterns {
		patternIds[i] = p.Id
	}
	if err := deletePatternRows(ctx, uow, sweep, patternIds); err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}

	if _, err := uow.ViewRepository().DeleteWhere(ctx, specification.ByTemplateID{TemplateID: template.Id}); err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}
	if _, err := uow.TemplateFeatureRepository().DeleteWhere(ctx, specification.ByTemplateID{TemplateID: template.Id}); err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}
	if err := uow.TemplateRepository().Delete(ctx, template.Id); err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}
	if err := sweep.Collect(ctx, uow); err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}

	if err := uow.Commit(); err != nil {
		return storageFailure(s.logger, templateModule, "Delete", err)
	}
	sweep.Commit()
	flushSchema(s.schemaCache)

	s.logger.Info(templateModule, "template deleted", map[string]interface{}{
		"id":       template.Id,
		"name":     template.Name,
		"patterns": len(patterns),
	})
	publish(ctx, s.publisher, s.logger, templateModule, events.New(events.TemplateDeleted, map[string]interface{}{
		"template_id": template.Id,
		"name":        template.Name,
	}))
	return nil
}

func (s *templateService) AttachFeature(ctx context.Context, templateId, featureId uuid.UUID) error {
	if templateId == uuid.Nil || featureId == uuid.Nil {
		return apperror.Validation("template and feature ids are required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageFailure(s.logger, templateModule, "AttachFeature", err)
	}
	defer uow.Rollback()

	template, feature, err := s.findPair(ctx, uow, templateId, featureId)
	if err != nil {
		return err
	}
	linked, err := uow.TemplateFeatureRepository().Count(ctx,
		specification.ByTemplateID{TemplateID: template.Id},
		specification.ByFeatureID{FeatureID: feature.Id},
	)
	if err != nil {
		return storageFailure(s.logger, templateModule, "AttachFeature", err)
	}
	if linked > 0 {
		return nil
	}

	link := &entity.TemplateFeature{Id: uuid.New(), TemplateId: template.Id, FeatureId: feature.Id}
	if err := uow.TemplateFeatureRepository().Create(ctx, link); err != nil {
		return storageFailure(s.logger, templateModule, "AttachFeature", err)
	}
	if err := uow.Commit(); err != nil {
		return storageFailure(s.logger, templateModule, "AttachFeature", err)
	}
	flushSchema(s.schemaCache)

	s.logger.Info(templateModule, "feature attached", map[string]interface{}{"template": template.Name, "feature": feature.Name})
	publish(ctx, s.publisher, s.logger, templateModule, events.New(events.TemplateFeatureAttached, map[string]interface{}{
		"template_id": template.Id,
		"feature_id":  feature.Id,
	}))
	return nil
}

func (s *templateService) DetachFeature(ctx context.Context, templateId, featureId uuid.UUID) (int64, error) {
	sweep := newBlobSweep(s.uowFactory, s.blobs, s.logger, templateModule)
	defer sweep.Abort(ctx)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, storageFailure(s.logger, templateModule, "DetachFeature", err)
	}
	defer uow.Rollback()

	template, feature, err := s.findPair(ctx, uow, templateId, featureId)
	if err != nil {
		return 0, err
	}
	removed, err := uow.TemplateFeatureRepository().DeleteWhere(ctx,
		specification.ByTemplateID{TemplateID: template.Id},
		specification.ByFeatureID{FeatureID: feature.Id},
	)
	if err != nil {
		return 0, storageFailure(s.logger, templateModule, "DetachFeature", err)
	}
	if removed == 0 {
		return 0, apperror.NotFound("feature of template "+template.Name, feature.Id)
	}

	scope := specification.InTemplate{TemplateID: template.Id}
	if feature.Type.IsImage() {
		values, err := uow.FeatureValueRepository().FindAll(ctx, feature, scope)
		if err != nil {
			return 0, storageFailure(s.logger, templateModule, "DetachFeature", err)
		}
		for _, v := range values {
			sweep.Release(v.Hash)
		}
	}
	lost, err := uow.FeatureValueRepository().DeleteWhere(ctx, feature, scope)
	if err != nil {
		return 0, storageFailure(s.logger, templateModule, "DetachFeature", err)
	}
	if err := sweep.Collect(ctx, uow); err != nil {
		return 0, storageFailure(s.logger, templateModule, "DetachFeature", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, storageFailure(s.logger, templateModule, "DetachFeature", err)
	}
	sweep.Commit()
	flushSchema(s.schemaCache)

	s.logger.Info(templateModule, "feature detached", map[string]interface{}{
		"template":    template.Name,
		"feature":     feature.Name,
		"values_lost": lost,
	})
	publish(ctx, s.publisher, s.logger, templateModule, events.New(events.TemplateFeatureDetached, map[string]interface{}{
		"template_id": template.Id,
		"feature_id":  feature.Id,
		"values_lost": lost,
	}))
	return lost, nil
}

func (s *templateService) CountFeatureValues(ctx context.Context, templateId, featureId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	template, feature, err := s.findPair(ctx, uow, templateId, featureId)
	if err != nil {
		return 0, err
	}
	n, err := uow.FeatureValueRepository().Count(ctx, feature, specification.InTemplate{TemplateID: template.Id})
	if err != nil {
		return 0, storageFailure(s.logger, templateModule, "CountFeatureValues", err)
	}
	return n, nil
}

func (s *templateService) findPair(ctx context.Context, uow unitofwork.UnitOfWork, templateId, featureId uuid.UUID) (*entity.Template, *entity.Feature, error) {
	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: templateId})
	if err != nil {
		return nil, nil, storageFailure(s.logger, templateModule, "findPair", err)
	}
	if template == nil {
		return nil, nil, apperror.NotFound("template", templateId)
	}
	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: featureId})
	if err != nil {
		return nil, nil, storageFailure(s.logger, templateModule, "findPair", err)
	}
	if feature == nil {
		return nil, nil, apperror.NotFound("feature", featureId)
	}
	return template, feature, nil
}

// deletePatternRows removes the value rows and language memberships of the
// given patterns, then the patterns themselves. Image hashes are handed to
// sweep.
func deletePatternRows(ctx context.Context, uow unitofwork.UnitOfWork, sweep *blobSweep, patternIds []uuid.UUID) error {
	if len(patternIds) == 0 {
		return nil
	}
	features, err := uow.FeatureRepository().FindAll(ctx)
	if err != nil {
		return err
	}
	scope := specification.ByPatternIDs{PatternIDs: patternIds}
	for _, f := range features {
		if f.Type.IsImage() {
			values, err := uow.FeatureValueRepository().FindAll(ctx, f, scope)
			if err != nil {
				return err
			}
			for _, v := range values {
				sweep.Release(v.Hash)
			}
		}
		if _, err := uow.FeatureValueRepository().DeleteWhere(ctx, f, scope); err != nil {
			return err
		}
	}
	if _, err := uow.LanguageMemberRepository().DeleteWhere(ctx, scope); err != nil {
		return err
	}
	for _, id := range patternIds {
		if err := uow.PatternRepository().Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func toTemplateDetail(t *entity.Template, features []*entity.Feature) *dto.TemplateDetailResponse {
	return &dto.TemplateDetailResponse{
		Id:        t.Id,
		Name:      t.Name,
		Notes:     t.Notes,
		Features:  toFeatureResponses(features),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
