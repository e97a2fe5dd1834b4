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

	"github.com/google/uuid"
)

// storageFailure wraps err as a Storage error and logs it. Errors that
// already carry a kind pass through unlogged.
func storageFailure(log logger.ILogger, module, op string, err error) error {
	wrapped := apperror.Storage(err)
	if apperror.KindOf(wrapped) == apperror.KindStorage {
		log.Error(module, op+" failed", map[string]interface{}{"error": err.Error()})
	}
	return wrapped
}

// publish sends an event after commit. A nil publisher disables events and
// a failed publish is only logged.
func publish(ctx context.Context, publisher events.Publisher, log logger.ILogger, module string, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn(module, "failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

// cachedTemplateFeatures resolves the live feature set of a template through
// the schema cache. Only read paths use it; writes always resolve inside
// their transaction.
//
// A hit is checked against the template's links and the features' value
// tables, since another instance may have changed the schema without this
// cache being flushed. A stale entry is dropped and reloaded.
func cachedTemplateFeatures(ctx context.Context, uow unitofwork.UnitOfWork, cache *memory.SchemaCache, templateId uuid.UUID) ([]*entity.Feature, error) {
	if cache == nil {
		return uow.FeatureRepository().FindByTemplate(ctx, templateId)
	}
	if features, ok := cache.Get(templateId); ok {
		current, err := schemaCurrent(ctx, uow, templateId, features)
		if err != nil {
			return nil, err
		}
		if current {
			return features, nil
		}
		cache.Delete(templateId)
	}

	gen := cache.Generation()
	features, err := uow.FeatureRepository().FindByTemplate(ctx, templateId)
	if err != nil {
		return nil, err
	}
	cache.SetIfCurrent(templateId, features, gen)
	return features, nil
}

// schemaCurrent reports whether features is still exactly the set linked to
// the template, each with its value table in place.
func schemaCurrent(ctx context.Context, uow unitofwork.UnitOfWork, templateId uuid.UUID, features []*entity.Feature) (bool, error) {
	links, err := uow.TemplateFeatureRepository().FindAll(ctx, specification.ByTemplateID{TemplateID: templateId})
	if err != nil {
		return false, err
	}
	if len(links) != len(features) {
		return false, nil
	}
	linked := make(map[uuid.UUID]struct{}, len(links))
	for _, link := range links {
		linked[link.FeatureId] = struct{}{}
	}
	for _, f := range features {
		if _, ok := linked[f.Id]; !ok {
			return false, nil
		}
		has, err := uow.FeatureValueRepository().HasStorage(ctx, f)
		if err != nil {
			return false, err
		}
		if !has {
			return false, nil
		}
	}
	return true, nil
}

// SchemaInvalidator flushes the schema cache on feature and template events.
// The relay hands it events committed by other instances.
type SchemaInvalidator struct {
	cache *memory.SchemaCache
}

func NewSchemaInvalidator(cache *memory.SchemaCache) *SchemaInvalidator {
	return &SchemaInvalidator{cache: cache}
}

func (i *SchemaInvalidator) Publish(_ context.Context, event events.Event) error {
	t := event.EventType()
	if strings.HasPrefix(t, "FEATURE_") || strings.HasPrefix(t, "TEMPLATE_") {
		flushSchema(i.cache)
	}
	return nil
}

func flushSchema(cache *memory.SchemaCache) {
	if cache != nil {
		cache.Flush()
	}
}

func toFeatureResponse(f *entity.Feature) *dto.FeatureResponse {
	return &dto.FeatureResponse{
		Id:        f.Id,
		Name:      f.Name,
		Type:      string(f.Type),
		Required:  f.Required,
		Notes:     f.Notes,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func toFeatureResponses(features []*entity.Feature) []*dto.FeatureResponse {
	out := make([]*dto.FeatureResponse, len(features))
	for i, f := range features {
		out[i] = toFeatureResponse(f)
	}
	return out
}
