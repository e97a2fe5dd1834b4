package service

import (
	"context"
	"html"
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
	"pattern-sphere-be/pkg/layout"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const viewModule = "ViewService"

const maxViewName = 255

type IViewService interface {
	List(ctx context.Context, req *dto.ListViewsRequest) ([]*dto.ViewResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ViewResponse, error)
	Create(ctx context.Context, req *dto.CreateViewRequest) (*dto.SaveViewResponse, error)
	Update(ctx context.Context, req *dto.UpdateViewRequest) (*dto.SaveViewResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Lint(ctx context.Context, id uuid.UUID) (*dto.LintResponse, error)
	Layout(ctx context.Context, id uuid.UUID) (*dto.LayoutDownload, error)
	// Render substitutes the pattern's values into the view's layout. The
	// pattern must belong to the view's template.
	Render(ctx context.Context, viewId, patternId uuid.UUID) (string, error)
}

type viewService struct {
	uowFactory  unitofwork.RepositoryFactory
	blobs       BlobStore
	schemaCache *memory.SchemaCache
	publisher   events.Publisher
	logger      logger.ILogger
}

func NewViewService(
	uowFactory unitofwork.RepositoryFactory,
	blobs BlobStore,
	schemaCache *memory.SchemaCache,
	publisher events.Publisher,
	log logger.ILogger,
) IViewService {
	return &viewService{
		uowFactory:  uowFactory,
		blobs:       blobs,
		schemaCache: schemaCache,
		publisher:   publisher,
		logger:      log,
	}
}

func (s *viewService) List(ctx context.Context, req *dto.ListViewsRequest) ([]*dto.ViewResponse, error) {
	var specs []specification.Specification
	if req != nil && req.TemplateId != nil {
		specs = append(specs, specification.ByTemplateID{TemplateID: *req.TemplateId})
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	views, err := uow.ViewRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, storageFailure(s.logger, viewModule, "List", err)
	}
	result := make([]*dto.ViewResponse, 0, len(views))
	for _, v := range views {
		result = append(result, toViewResponse(v))
	}
	return result, nil
}

func (s *viewService) Show(ctx context.Context, id uuid.UUID) (*dto.ViewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	view, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	return toViewResponse(view), nil
}

func (s *viewService) Create(ctx context.Context, req *dto.CreateViewRequest) (*dto.SaveViewResponse, error) {
	name, err := viewName(req.Name)
	if err != nil {
		return nil, err
	}
	layoutText, _, err := chooseLayout(req.Layout, req.LayoutFile)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, viewModule, "Create", err)
	}
	defer uow.Rollback()

	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: req.TemplateId})
	if err != nil {
		return nil, storageFailure(s.logger, viewModule, "Create", err)
	}
	if template == nil {
		return nil, apperror.NotFound("template", req.TemplateId)
	}
	if err := s.checkNameFree(ctx, uow, template, name, uuid.Nil); err != nil {
		return nil, err
	}

	view := &entity.PatternView{
		Id:         uuid.New(),
		TemplateId: template.Id,
		Name:       name,
		Notes:      req.Notes,
		Layout:     layoutText,
	}
	if err := uow.ViewRepository().Create(ctx, view); err != nil {
		return nil, storageFailure(s.logger, viewModule, "Create", err)
	}
	features, err := uow.FeatureRepository().FindByTemplate(ctx, template.Id)
	if err != nil {
		return nil, storageFailure(s.logger, viewModule, "Create", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, viewModule, "Create", err)
	}

	s.logger.Info(viewModule, "view created", map[string]interface{}{"id": view.Id, "template": template.Name, "name": view.Name})
	publish(ctx, s.publisher, s.logger, viewModule, events.New(events.ViewCreated, map[string]interface{}{
		"view_id":     view.Id,
		"template_id": template.Id,
	}))
	return &dto.SaveViewResponse{View: toViewResponse(view), Lint: lintView(view, features)}, nil
}

func (s *viewService) Update(ctx context.Context, req *dto.UpdateViewRequest) (*dto.SaveViewResponse, error) {
	layoutText, given, err := chooseLayout(req.Layout, req.LayoutFile)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFailure(s.logger, viewModule, "Update", err)
	}
	defer uow.Rollback()

	view, err := s.find(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}
	template, err := uow.TemplateRepository().FindOne(ctx, specification.ByID{ID: view.TemplateId})
	if err != nil {
		return nil, storageFailure(s.logger, viewModule, "Update", err)
	}
	if template == nil {
		return nil, apperror.NotFound("template", view.TemplateId)
	}

	if req.Name != nil {
		name, err := viewName(*req.Name)
		if err != nil {
			return nil, err
		}
		if name != view.Name {
			if err := s.checkNameFree(ctx, uow, template, name, view.Id); err != nil {
				return nil, err
			}
			view.Name = name
		}
	}
	if req.Notes != nil {
		view.Notes = *req.Notes
	}
	switch {
	case given:
		view.Layout = layoutText
	case req.ClearLayout:
		view.Layout = nil
	}

	if err := uow.ViewRepository().Update(ctx, view); err != nil {
		return nil, storageFailure(s.logger, viewModule, "Update", err)
	}
	features, err := uow.FeatureRepository().FindByTemplate(ctx, template.Id)
	if err != nil {
		return nil, storageFailure(s.logger, viewModule, "Update", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFailure(s.logger, viewModule, "Update", err)
	}

	s.logger.Info(viewModule, "view updated", map[string]interface{}{"id": view.Id, "name": view.Name})
	publish(ctx, s.publisher, s.logger, viewModule, events.New(events.ViewUpdated, map[string]interface{}{
		"view_id":     view.Id,
		"template_id": view.TemplateId,
	}))
	return &dto.SaveViewResponse{View: toViewResponse(view), Lint: lintView(view, features)}, nil
}

func (s *viewService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageFailure(s.logger, viewModule, "Delete", err)
	}
	defer uow.Rollback()

	view, err := s.find(ctx, uow, id)
	if err != nil {
		return err
	}
	if err := uow.ViewRepository().Delete(ctx, view.Id); err != nil {
		return storageFailure(s.logger, viewModule, "Delete", err)
	}
	if err := uow.Commit(); err != nil {
		return storageFailure(s.logger, viewModule, "Delete", err)
	}

	s.logger.Info(viewModule, "view deleted", map[string]interface{}{"id": view.Id, "name": view.Name})
	publish(ctx, s.publisher, s.logger, viewModule, events.New(events.ViewDeleted, map[string]interface{}{
		"view_id":     view.Id,
		"template_id": view.TemplateId,
	}))
	return nil
}

func (s *viewService) Lint(ctx context.Context, id uuid.UUID) (*dto.LintResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	view, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	features, err := cachedTemplateFeatures(ctx, uow, s.schemaCache, view.TemplateId)
	if err != nil {
		return nil, storageFailure(s.logger, viewModule, "Lint", err)
	}
	return lintView(view, features), nil
}

func (s *viewService) Layout(ctx context.Context, id uuid.UUID) (*dto.LayoutDownload, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	view, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if view.Layout == nil {
		return nil, apperror.Validation("view %s has no layout", view.Name)
	}
	return &dto.LayoutDownload{
		Filename: view.Name + ".html",
		Content:  *view.Layout,
	}, nil
}

func (s *viewService) Render(ctx context.Context, viewId, patternId uuid.UUID) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	view, err := s.find(ctx, uow, viewId)
	if err != nil {
		return "", err
	}
	pattern, err := uow.PatternRepository().FindOne(ctx, specification.ByID{ID: patternId})
	if err != nil {
		return "", storageFailure(s.logger, viewModule, "Render", err)
	}
	if pattern == nil {
		return "", apperror.NotFound("pattern", patternId)
	}
	if pattern.TemplateId != view.TemplateId {
		return "", apperror.Validation("pattern %s does not belong to the template of view %s", pattern.Id, view.Name)
	}
	if view.Layout == nil {
		return "", nil
	}

	features, err := cachedTemplateFeatures(ctx, uow, s.schemaCache, view.TemplateId)
	if err != nil {
		return "", storageFailure(s.logger, viewModule, "Render", err)
	}
	values := make(map[string]*entity.FeatureValue, len(features))
	byName := make(map[string]*entity.Feature, len(features))
	for _, f := range features {
		byName[f.Name] = f
		v, err := uow.FeatureValueRepository().FindByPattern(ctx, f, pattern.Id)
		if err != nil {
			return "", storageFailure(s.logger, viewModule, "Render", err)
		}
		if v != nil {
			values[f.Name] = v
		}
	}

	resolve := func(token string) string {
		if name, alt := layout.FeatureName(token); alt {
			if f, ok := byName[name]; ok && f.Type.IsImage() {
				if v := values[name]; v != nil {
					return html.EscapeString(v.AltText)
				}
				return ""
			}
		}
		f, ok := byName[token]
		if !ok {
			return ""
		}
		v := values[token]
		if v == nil {
			return ""
		}
		if f.Type.IsImage() {
			return html.EscapeString(s.blobs.PublicURL(v.Hash))
		}
		return html.EscapeString(v.Value)
	}
	return layout.Render(*view.Layout, resolve), nil
}

func (s *viewService) find(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.PatternView, error) {
	view, err := uow.ViewRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFailure(s.logger, viewModule, "find", err)
	}
	if view == nil {
		return nil, apperror.NotFound("view", id)
	}
	return view, nil
}

func (s *viewService) checkNameFree(ctx context.Context, uow unitofwork.UnitOfWork, template *entity.Template, name string, self uuid.UUID) error {
	specs := []specification.Specification{
		specification.ByTemplateID{TemplateID: template.Id},
		specification.ByName{Name: name},
	}
	if self != uuid.Nil {
		specs = append(specs, specification.ExcludeID{ID: self})
	}
	clash, err := uow.ViewRepository().FindOne(ctx, specs...)
	if err != nil {
		return storageFailure(s.logger, viewModule, "checkNameFree", err)
	}
	if clash != nil {
		return apperror.DuplicateName("view name %q already in use for template %s", name, template.Name)
	}
	return nil
}

// chooseLayout picks the layout input. A file wins over raw text and must
// sniff as HTML. given is false when neither was supplied.
func chooseLayout(text *string, file *dto.LayoutUpload) (*string, bool, error) {
	if file != nil && len(file.Data) > 0 {
		if !mimetype.Detect(file.Data).Is("text/html") {
			return nil, false, apperror.Validation("layout file %s is not an HTML document", file.Filename)
		}
		content := string(file.Data)
		return &content, true, nil
	}
	if text != nil {
		content := *text
		return &content, true, nil
	}
	return nil, false, nil
}

func viewName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validation("view name is required")
	}
	if utf8.RuneCountInString(name) > maxViewName {
		return "", apperror.Validation("view name is limited to %d characters", maxViewName)
	}
	return name, nil
}

func lintView(view *entity.PatternView, features []*entity.Feature) *dto.LintResponse {
	text := ""
	if view.Layout != nil {
		text = *view.Layout
	}
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name
	}
	result := layout.Lint(text, names)
	return &dto.LintResponse{
		FoundInBoth:  result.FoundInBoth,
		LayoutOnly:   result.LayoutOnly,
		TemplateOnly: result.TemplateOnly,
		Clean:        result.Clean(),
	}
}

func toViewResponse(v *entity.PatternView) *dto.ViewResponse {
	return &dto.ViewResponse{
		Id:         v.Id,
		TemplateId: v.TemplateId,
		Name:       v.Name,
		Notes:      v.Notes,
		Layout:     v.Layout,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}
