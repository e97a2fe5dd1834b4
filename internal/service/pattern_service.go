package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

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

const patternModule = "PatternService"

// TitleFeature is the feature whose value is shown as a pattern's title in
// listings.
const TitleFeature = "title"

type IPatternService interface {
	List(ctx context.Context, req *dto.ListPatternsRequest) ([]*dto.PatternSummaryResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.PatternDetailResponse, error)
	Insert(ctx context.Context, req *dto.InsertPatternRequest) (*dto.PatternDetailResponse, error)
	Update(ctx context.Context, req *dto.UpdatePatternRequest) (*dto.UpdatePatternResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, templateId uuid.UUID) (int64, error)
}

type patternService struct {
	uowFactory  unitofwork.RepositoryFactory
	blobs       BlobStore
	schemaCache *memory.SchemaCache
	publisher   events.Publisher
	logger      logger.ILogger
}

func NewPatternService(
	uowFactory unitofwork.RepositoryFactory,
	blobs BlobStore,
	schemaCache *memory.SchemaCache,
	publisher events.Publisher,
	log logger.ILogger,
) IPatternService {
	return &patternService{
		uowFactory:  uowFactory,
		blobs:       blobs,
		schemaCache: schemaCache,
		publisher:   publisher,
		logger:      log,
	}
}

func (s *patternService) List(ctx context.Context, req *dto.ListPatternsRequest) ([]*dto.PatternSummaryResponse, error) {
	var specs []specification.Specification
	if req != nil {
		if req.TemplateId != nil {
			specs = append(specs, specification.ByTemplateID{TemplateID: *req.TemplateId})
		}
		if req.LanguageId != nil {
			specs = append(specs, specification.InLanguage{LanguageID: *req.LanguageId})
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	patterns, err := uow.PatternRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "List", err)
	}
	result := make([]*dto.PatternSummaryResponse, 0, len(patterns))
	if len(patterns) == 0 {
		return result, nil
	}

	templates, err := uow.TemplateRepository().FindAll(ctx)
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "List", err)
	}
	templateNames := make(map[uuid.UUID]string, len(templates))
	for _, t := range templates {
		templateNames[t.Id] = t.Name
	}

	titles, err := s.titles(ctx, uow, patterns)
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "List", err)
	}

	for _, p := range patterns {
		result = append(result, &dto.PatternSummaryResponse{
			Id:           p.Id,
			TemplateId:   p.TemplateId,
			TemplateName: templateNames[p.TemplateId],
			Title:        titles[p.Id],
			Notes:        p.Notes,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		})
	}
	return result, nil
}

// titles joins in the value of the title feature when one exists and is a
// scalar.
func (s *patternService) titles(ctx context.Context, uow unitofwork.UnitOfWork, patterns []*entity.Pattern) (map[uuid.UUID]string, error) {
	titles := make(map[uuid.UUID]string, len(patterns))
	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByName{Name: TitleFeature})
	if err != nil || feature == nil || feature.Type.IsImage() {
		return titles, err
	}

	ids := make([]uuid.UUID, len(patterns))
	for i, p := range patterns {
		ids[i] = p.Id
	}
	values, err := uow.FeatureValueRepository().FindAll(ctx, feature, specification.ByPatternIDs{PatternIDs: ids})
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		titles[v.PatternId] = v.Value
	}
	return titles, nil
}

// Show resolves the pattern's shape from the current template membership.
// Every feature of the template has an entry, with nil value fields when
// the pattern holds no value.
func (s *patternService) Show(ctx context.Context, id uuid.UUID) (*dto.PatternDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	pattern, err := uow.PatternRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "Show", err)
	}
	if pattern == nil {
		return nil, apperror.NotFound("pattern", id)
	}
	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: pattern.TemplateId})
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "Show", err)
	}
	features, err := cachedTemplateFeatures(ctx, uow, s.schemaCache, pattern.TemplateId)
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "Show", err)
	}

	res := &dto.PatternDetailResponse{
		Id:         pattern.Id,
		TemplateId: pattern.TemplateId,
		Notes:      pattern.Notes,
		Features:   make(map[string]*dto.PatternFeatureResponse, len(features)),
		CreatedAt:  pattern.CreatedAt,
		UpdatedAt:  pattern.UpdatedAt,
	}
	if template != nil {
		res.TemplateName = template.Name
	}

	for _, f := range features {
		entry := &dto.PatternFeatureResponse{
			FeatureId: f.Id,
			Name:      f.Name,
			Type:      string(f.Type),
			Required:  f.Required,
		}
		value, err := uow.FeatureValueRepository().FindByPattern(ctx, f, pattern.Id)
		if err != nil {
			return nil, storageFailure(s.logger, patternModule, "Show", err)
		}
		if value != nil {
			if f.Type.IsImage() {
				url := s.blobs.PublicURL(value.Hash)
				entry.AltText = &value.AltText
				entry.Filename = &value.Filename
				entry.Hash = &value.Hash
				entry.URL = &url
			} else {
				entry.Value = &value.Value
			}
		}
		res.Features[f.Name] = entry
	}
	return res, nil
}

func (s *patternService) Insert(ctx context.Context, req *dto.InsertPatternRequest) (*dto.PatternDetailResponse, error) {
	sweep := newBlobSweep(s.uowFactory, s.blobs, s.logger, patternModule)
	defer sweep.Abort(ctx)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, patternModule, "Insert", err)
	}
	defer uow.Rollback()

	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: req.TemplateId})
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "Insert", err)
	}
	if template == nil {
		return nil, apperror.NotFound("template", req.TemplateId)
	}
	features, err := uow.FeatureRepository().FindByTemplate(ctx, template.Id)
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "Insert", err)
	}
	if err := checkFeatureNames(template, features, req.Values, nil); err != nil {
		return nil, err
	}

	pattern := &entity.Pattern{Id: uuid.New(), TemplateId: template.Id, Notes: req.Notes}
	if err := uow.PatternRepository().Create(ctx, pattern); err != nil {
		return nil, storageFailure(s.logger, patternModule, "Insert", err)
	}

	stored := 0
	for _, f := range features {
		input := req.Values[f.Name]
		value, err := s.prepareValue(f, input, nil, sweep)
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}
		value.PatternId = pattern.Id
		if err := uow.FeatureValueRepository().Create(ctx, f, value); err != nil {
			return nil, storageFailure(s.logger, patternModule, "Insert", err)
		}
		stored++
	}

	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, patternModule, "Insert", err)
	}
	sweep.Commit()

	s.logger.Info(patternModule, "pattern created", map[string]interface{}{
		"id":       pattern.Id,
		"template": template.Name,
		"values":   stored,
	})
	publish(ctx, s.publisher, s.logger, patternModule, events.New(events.PatternCreated, map[string]interface{}{
		"pattern_id":  pattern.Id,
		"template_id": template.Id,
	}))
	return s.Show(ctx, pattern.Id)
}

// Update applies notes, Values and Deletes as one diff. Nothing is written
// when the diff is empty.
func (s *patternService) Update(ctx context.Context, req *dto.UpdatePatternRequest) (*dto.UpdatePatternResponse, error) {
	sweep := newBlobSweep(s.uowFactory, s.blobs, s.logger, patternModule)
	defer sweep.Abort(ctx)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, patternModule, "Update", err)
	}
	defer uow.Rollback()

	pattern, err := uow.PatternRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "Update", err)
	}
	if pattern == nil {
		return nil, apperror.NotFound("pattern", req.Id)
	}
	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: pattern.TemplateId})
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "Update", err)
	}
	if template == nil {
		return nil, apperror.NotFound("template", pattern.TemplateId)
	}
	features, err := uow.FeatureRepository().FindByTemplate(ctx, template.Id)
	if err != nil {
		return nil, storageFailure(s.logger, patternModule, "Update", err)
	}
	if err := checkFeatureNames(template, features, req.Values, req.Deletes); err != nil {
		return nil, err
	}

	deletes := make(map[string]bool, len(req.Deletes))
	for _, name := range req.Deletes {
		if _, ok := req.Values[name]; ok {
			return nil, apperror.Validation("feature %s is both updated and deleted", name)
		}
		deletes[name] = true
	}

	changed := false
	if req.Notes != nil && *req.Notes != pattern.Notes {
		pattern.Notes = *req.Notes
		changed = true
	}

	values := uow.FeatureValueRepository()
	for _, f := range features {
		input, submitted := req.Values[f.Name]
		if !submitted && !deletes[f.Name] {
			continue
		}
		existing, err := values.FindByPattern(ctx, f, pattern.Id)
		if err != nil {
			return nil, storageFailure(s.logger, patternModule, "Update", err)
		}

		if deletes[f.Name] {
			if f.Required {
				return nil, apperror.Validation("required feature %s cannot be deleted", f.Name)
			}
			if existing == nil {
				continue
			}
			if err := s.deleteValue(ctx, uow, f, existing, sweep); err != nil {
				return nil, err
			}
			changed = true
			continue
		}

		next, err := s.prepareValue(f, input, existing, sweep)
		if err != nil {
			return nil, err
		}
		switch {
		case next == nil && existing == nil:
		case next == nil:
			// An empty submission for an optional scalar removes the value.
			if err := s.deleteValue(ctx, uow, f, existing, sweep); err != nil {
				return nil, err
			}
			changed = true
		case existing == nil:
			next.PatternId = pattern.Id
			if err := values.Create(ctx, f, next); err != nil {
				return nil, storageFailure(s.logger, patternModule, "Update", err)
			}
			changed = true
		case !sameValue(existing, next):
			if existing.Hash != next.Hash {
				sweep.Release(existing.Hash)
			}
			existing.Value = next.Value
			existing.Filename = next.Filename
			existing.AltText = next.AltText
			existing.Hash = next.Hash
			if err := values.Update(ctx, f, existing); err != nil {
				return nil, storageFailure(s.logger, patternModule, "Update", err)
			}
			changed = true
		}
	}

	if !changed {
		return &dto.UpdatePatternResponse{Id: pattern.Id, Changed: false}, nil
	}
	if err := uow.PatternRepository().Update(ctx, pattern); err != nil {
		return nil, storageFailure(s.logger, patternModule, "Update", err)
	}
	if err := sweep.Collect(ctx, uow); err != nil {
		return nil, storageFailure(s.logger, patternModule, "Update", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, patternModule, "Update", err)
	}
	sweep.Commit()

	s.logger.Info(patternModule, "pattern updated", map[string]interface{}{"id": pattern.Id})
	publish(ctx, s.publisher, s.logger, patternModule, events.New(events.PatternUpdated, map[string]interface{}{
		"pattern_id":  pattern.Id,
		"template_id": pattern.TemplateId,
	}))
	return &dto.UpdatePatternResponse{Id: pattern.Id, Changed: true}, nil
}

// Delete removes the pattern with its value rows and language memberships.
func (s *patternService) Delete(ctx context.Context, id uuid.UUID) error {
	sweep := newBlobSweep(s.uowFactory, s.blobs, s.logger, patternModule)
	defer sweep.Abort(ctx)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageFailure(s.logger, patternModule, "Delete", err)
	}
	defer uow.Rollback()

	pattern, err := uow.PatternRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return storageFailure(s.logger, patternModule, "Delete", err)
	}
	if pattern == nil {
		return apperror.NotFound("pattern", id)
	}
	if err := deletePatternRows(ctx, uow, sweep, []uuid.UUID{pattern.Id}); err != nil {
		return storageFailure(s.logger, patternModule, "Delete", err)
	}
	if err := sweep.Collect(ctx, uow); err != nil {
		return storageFailure(s.logger, patternModule, "Delete", err)
	}
	if err := uow.Commit(); err != nil {
		return storageFailure(s.logger, patternModule, "Delete", err)
	}
	sweep.Commit()

	s.logger.Info(patternModule, "pattern deleted", map[string]interface{}{"id": pattern.Id})
	publish(ctx, s.publisher, s.logger, patternModule, events.New(events.PatternDeleted, map[string]interface{}{
		"pattern_id":  pattern.Id,
		"template_id": pattern.TemplateId,
	}))
	return nil
}

func (s *patternService) Count(ctx context.Context, templateId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: templateId})
	if err != nil {
		return 0, storageFailure(s.logger, patternModule, "Count", err)
	}
	if template == nil {
		return 0, apperror.NotFound("template", templateId)
	}
	n, err := uow.PatternRepository().Count(ctx, specification.ByTemplateID{TemplateID: template.Id})
	if err != nil {
		return 0, storageFailure(s.logger, patternModule, "Count", err)
	}
	return n, nil
}

// prepareValue validates one submitted field and returns the row to store,
// or nil when nothing should be stored. existing is the current row on
// update and nil on insert.
func (s *patternService) prepareValue(f *entity.Feature, input dto.FieldInput, existing *entity.FeatureValue, sweep *blobSweep) (*entity.FeatureValue, error) {
	if !f.Type.IsImage() {
		value, empty, err := normalizeScalar(f, input.Value)
		if err != nil {
			return nil, err
		}
		if empty {
			if f.Required {
				return nil, apperror.Validation("feature %s is required", f.Name)
			}
			return nil, nil
		}
		return &entity.FeatureValue{Id: uuid.New(), FeatureId: f.Id, Value: value}, nil
	}

	altText := strings.TrimSpace(input.AltText)
	if input.Upload == nil {
		if existing == nil {
			if altText == "" && !f.Required {
				return nil, nil
			}
			return nil, apperror.Validation("feature %s needs an image upload", f.Name)
		}
		if altText == "" {
			return nil, apperror.Validation("feature %s needs alternate text", f.Name)
		}
		return &entity.FeatureValue{
			Id:        existing.Id,
			FeatureId: f.Id,
			Filename:  existing.Filename,
			AltText:   altText,
			Hash:      existing.Hash,
		}, nil
	}

	if altText == "" {
		return nil, apperror.Validation("feature %s needs alternate text", f.Name)
	}
	upload, err := s.blobs.CheckAndStore(input.Upload.Data, input.Upload.Filename)
	if err != nil {
		return nil, err
	}
	sweep.Stored(upload)
	return &entity.FeatureValue{
		Id:        uuid.New(),
		FeatureId: f.Id,
		Filename:  upload.Filename,
		AltText:   altText,
		Hash:      upload.Hash,
	}, nil
}

func (s *patternService) deleteValue(ctx context.Context, uow unitofwork.UnitOfWork, f *entity.Feature, value *entity.FeatureValue, sweep *blobSweep) error {
	if f.Type.IsImage() {
		sweep.Release(value.Hash)
	}
	if _, err := uow.FeatureValueRepository().DeleteWhere(ctx, f, specification.ByPatternID{PatternID: value.PatternId}); err != nil {
		return storageFailure(s.logger, patternModule, "deleteValue", err)
	}
	return nil
}

// normalizeScalar trims for the emptiness check, canonicalizes integers and
// bounds short strings.
func normalizeScalar(f *entity.Feature, raw string) (string, bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", true, nil
	}
	switch f.Type {
	case entity.FeatureTypeInteger:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return "", false, apperror.Validation("feature %s expects an integer, got %q", f.Name, raw)
		}
		return strconv.FormatInt(n, 10), false, nil
	case entity.FeatureTypeString:
		if utf8.RuneCountInString(raw) > entity.MaxStringLength {
			return "", false, apperror.Validation("feature %s is limited to %d characters", f.Name, entity.MaxStringLength)
		}
	}
	return raw, false, nil
}

func checkFeatureNames(template *entity.Template, features []*entity.Feature, values map[string]dto.FieldInput, deletes []string) error {
	known := make(map[string]struct{}, len(features))
	for _, f := range features {
		known[f.Name] = struct{}{}
	}
	for name := range values {
		if _, ok := known[name]; !ok {
			return apperror.Validation("feature %s is not part of template %s", name, template.Name)
		}
	}
	for _, name := range deletes {
		if _, ok := known[name]; !ok {
			return apperror.Validation("feature %s is not part of template %s", name, template.Name)
		}
	}
	return nil
}

func sameValue(a, b *entity.FeatureValue) bool {
	return a.Value == b.Value && a.Filename == b.Filename && a.AltText == b.AltText && a.Hash == b.Hash
}
