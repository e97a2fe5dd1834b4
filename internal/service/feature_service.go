// FILE: internal/service/feature_service.go
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

const featureModule = "FeatureService"

type IFeatureService interface {
	List(ctx context.Context, req *dto.ListFeaturesRequest) ([]*dto.FeatureResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.FeatureResponse, error)
	Create(ctx context.Context, req *dto.CreateFeatureRequest) (*dto.FeatureResponse, error)
	Update(ctx context.Context, req *dto.UpdateFeatureRequest) (*dto.FeatureResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UsageStats(ctx context.Context, id uuid.UUID) (*dto.FeatureStatsResponse, error)
}

type featureService struct {
	uowFactory  unitofwork.RepositoryFactory
	blobs       BlobStore
	schemaCache *memory.SchemaCache
	publisher   events.Publisher
	logger      logger.ILogger
}

func NewFeatureService(
	uowFactory unitofwork.RepositoryFactory,
	blobs BlobStore,
	schemaCache *memory.SchemaCache,
	publisher events.Publisher,
	log logger.ILogger,
) IFeatureService {
	return &featureService{
		uowFactory:  uowFactory,
		blobs:       blobs,
		schemaCache: schemaCache,
		publisher:   publisher,
		logger:      log,
	}
}

func (s *featureService) List(ctx context.Context, req *dto.ListFeaturesRequest) ([]*dto.FeatureResponse, error) {
	var specs []specification.Specification
	if req != nil {
		if req.Required != nil {
			specs = append(specs, specification.ByRequired{Required: *req.Required})
		}
		if req.Type != "" {
			specs = append(specs, specification.ByType{Type: req.Type})
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	features, err := uow.FeatureRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, storageFailure(s.logger, featureModule, "List", err)
	}
	return toFeatureResponses(features), nil
}

func (s *featureService) Show(ctx context.Context, id uuid.UUID) (*dto.FeatureResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFailure(s.logger, featureModule, "Show", err)
	}
	if feature == nil {
		return nil, apperror.NotFound("feature", id)
	}
	return toFeatureResponse(feature), nil
}

func (s *featureService) Create(ctx context.Context, req *dto.CreateFeatureRequest) (*dto.FeatureResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := identifier.Validate(name); err != nil {
		return nil, err
	}
	featureType := entity.FeatureType(req.Type)
	if !featureType.Valid() {
		return nil, apperror.Validation("unknown feature type %q", req.Type)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, featureModule, "Create", err)
	}
	defer uow.Rollback()

	existing, err := uow.FeatureRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return nil, storageFailure(s.logger, featureModule, "Create", err)
	}
	if existing != nil {
		return nil, apperror.DuplicateName("feature name %q already in use", name)
	}

	id := uuid.New()
	feature := &entity.Feature{
		Id:          id,
		Name:        name,
		Type:        featureType,
		Required:    req.Required,
		Notes:       req.Notes,
		StorageName: entity.StorageNameFor(id),
	}
	if err := uow.FeatureRepository().Create(ctx, feature); err != nil {
		return nil, storageFailure(s.logger, featureModule, "Create", err)
	}
	if err := uow.FeatureValueRepository().CreateStorage(ctx, feature); err != nil {
		return nil, storageFailure(s.logger, featureModule, "Create", err)
	}

	attached := 0
	if feature.Required {
		if attached, err = attachToAllTemplates(ctx, uow, feature); err != nil {
			return nil, storageFailure(s.logger, featureModule, "Create", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, featureModule, "Create", err)
	}
	flushSchema(s.schemaCache)

	s.logger.Info(featureModule, "feature created", map[string]interface{}{
		"id":       feature.Id,
		"name":     feature.Name,
		"type":     feature.Type,
		"storage":  feature.StorageName,
		"attached": attached,
	})
	publish(ctx, s.publisher, s.logger, featureModule, events.New(events.FeatureCreated, map[string]interface{}{
		"feature_id": feature.Id,
		"name":       feature.Name,
		"type":       string(feature.Type),
	}))
	return toFeatureResponse(feature), nil
}

func (s *featureService) Update(ctx context.Context, req *dto.UpdateFeatureRequest) (*dto.FeatureResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, featureModule, "Update", err)
	}
	defer uow.Rollback()

	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, storageFailure(s.logger, featureModule, "Update", err)
	}
	if feature == nil {
		return nil, apperror.NotFound("feature", req.Id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := identifier.Validate(name); err != nil {
			return nil, err
		}
		if name != feature.Name {
			clash, err := uow.FeatureRepository().FindOne(ctx, specification.ByName{Name: name}, specification.ExcludeID{ID: feature.Id})
			if err != nil {
				return nil, storageFailure(s.logger, featureModule, "Update", err)
			}
			if clash != nil {
				return nil, apperror.DuplicateName("feature name %q already in use", name)
			}
			feature.Name = name
		}
	}
	if req.Notes != nil {
		feature.Notes = *req.Notes
	}

	becameRequired := false
	if req.Required != nil {
		becameRequired = *req.Required && !feature.Required
		feature.Required = *req.Required
	}

	if req.Type != nil && entity.FeatureType(*req.Type) != feature.Type {
		newType := entity.FeatureType(*req.Type)
		if !newType.Valid() {
			return nil, apperror.Validation("unknown feature type %q", *req.Type)
		}
		total, err := uow.FeatureValueRepository().Count(ctx, feature)
		if err != nil {
			return nil, storageFailure(s.logger, featureModule, "Update", err)
		}
		if total > 0 {
			return nil, apperror.Validation("type of feature %s cannot change while %d values exist", feature.Name, total)
		}
		// The table is empty, so it is re-created with the new row shape.
		if err := uow.FeatureValueRepository().DropStorage(ctx, feature); err != nil {
			return nil, storageFailure(s.logger, featureModule, "Update", err)
		}
		feature.Type = newType
		if err := uow.FeatureValueRepository().CreateStorage(ctx, feature); err != nil {
			return nil, storageFailure(s.logger, featureModule, "Update", err)
		}
	}

	if err := uow.FeatureRepository().Update(ctx, feature); err != nil {
		return nil, storageFailure(s.logger, featureModule, "Update", err)
	}
	if becameRequired {
		if _, err := attachToAllTemplates(ctx, uow, feature); err != nil {
			return nil, storageFailure(s.logger, featureModule, "Update", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, featureModule, "Update", err)
	}
	flushSchema(s.schemaCache)

	s.logger.Info(featureModule, "feature updated", map[string]interface{}{"id": feature.Id, "name": feature.Name})
	publish(ctx, s.publisher, s.logger, featureModule, events.New(events.FeatureUpdated, map[string]interface{}{
		"feature_id": feature.Id,
		"name":       feature.Name,
		"type":       string(feature.Type),
	}))
	return toFeatureResponse(feature), nil
}

// Delete removes the associations, the catalog row and the value table in
// one transaction.
func (s *featureService) Delete(ctx context.Context, id uuid.UUID) error {
	sweep := newBlobSweep(s.uowFactory, s.blobs, s.logger, featureModule)
	defer sweep.Abort(ctx)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageFailure(s.logger, featureModule, "Delete", err)
	}
	defer uow.Rollback()

	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return storageFailure(s.logger, featureModule, "Delete", err)
	}
	if feature == nil {
		return apperror.NotFound("feature", id)
	}

	if feature.Type.IsImage() {
		values, err := uow.FeatureValueRepository().FindAll(ctx, feature)
		if err != nil {
			return storageFailure(s.logger, featureModule, "Delete", err)
		}
		for _, v := range values {
			sweep.Release(v.Hash)
		}
	}

	detached, err := uow.TemplateFeatureRepository().DeleteWhere(ctx, specification.ByFeatureID{FeatureID: feature.Id})
	if err != nil {
		return storageFailure(s.logger, featureModule, "Delete", err)
	}
	if err := uow.FeatureRepository().Delete(ctx, feature.Id); err != nil {
		return storageFailure(s.logger, featureModule, "Delete", err)
	}
	if err := uow.FeatureValueRepository().DropStorage(ctx, feature); err != nil {
		return storageFailure(s.logger, featureModule, "Delete", err)
	}
	if err := sweep.Collect(ctx, uow); err != nil {
		return storageFailure(s.logger, featureModule, "Delete", err)
	}

	if err := uow.Commit(); err != nil {
		return storageFailure(s.logger, featureModule, "Delete", err)
	}
	sweep.Commit()
	flushSchema(s.schemaCache)

	s.logger.Info(featureModule, "feature deleted", map[string]interface{}{
		"id":       feature.Id,
		"name":     feature.Name,
		"detached": detached,
	})
	publish(ctx, s.publisher, s.logger, featureModule, events.New(events.FeatureDeleted, map[string]interface{}{
		"feature_id": feature.Id,
		"name":       feature.Name,
	}))
	return nil
}

func (s *featureService) UsageStats(ctx context.Context, id uuid.UUID) (*dto.FeatureStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFailure(s.logger, featureModule, "UsageStats", err)
	}
	if feature == nil {
		return nil, apperror.NotFound("feature", id)
	}

	usage, err := uow.FeatureValueRepository().UsageByTemplate(ctx, feature)
	if err != nil {
		return nil, storageFailure(s.logger, featureModule, "UsageStats", err)
	}
	total, err := uow.FeatureValueRepository().Count(ctx, feature)
	if err != nil {
		return nil, storageFailure(s.logger, featureModule, "UsageStats", err)
	}

	res := &dto.FeatureStatsResponse{
		FeatureId:  feature.Id,
		Usage:      make([]dto.FeatureUsageResponse, 0, len(usage)),
		TotalCount: total,
		TypeLocked: total > 0,
	}
	for _, u := range usage {
		res.Usage = append(res.Usage, dto.FeatureUsageResponse{
			TemplateId:   u.TemplateId,
			TemplateName: u.TemplateName,
			ValueCount:   u.ValueCount,
		})
	}
	return res, nil
}

// attachToAllTemplates links a required feature to every template that
// lacks it and returns how many links were added.
func attachToAllTemplates(ctx context.Context, uow unitofwork.UnitOfWork, feature *entity.Feature) (int, error) {
	templates, err := uow.TemplateRepository().FindAll(ctx)
	if err != nil {
		return 0, err
	}
	links, err := uow.TemplateFeatureRepository().FindAll(ctx, specification.ByFeatureID{FeatureID: feature.Id})
	if err != nil {
		return 0, err
	}
	linked := make(map[uuid.UUID]bool, len(links))
	for _, l := range links {
		linked[l.TemplateId] = true
	}

	added := 0
	for _, t := range templates {
		if linked[t.Id] {
			continue
		}
		link := &entity.TemplateFeature{Id: uuid.New(), TemplateId: t.Id, FeatureId: feature.Id}
		if err := uow.TemplateFeatureRepository().Create(ctx, link); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
