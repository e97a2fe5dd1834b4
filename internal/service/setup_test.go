package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/internal/repository/memory"
	"pattern-sphere-be/internal/repository/memstore"
	"pattern-sphere-be/pkg/blobstore"
	"pattern-sphere-be/pkg/events"

	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 32)...)
	htmlBytes = []byte("<!DOCTYPE html><html><body><h1>%%title%%</h1></body></html>")
)

type fixture struct {
	ctx       context.Context
	store     *memstore.Store
	blobs     *blobstore.Store
	recorder  *events.Recorder
	features  IFeatureService
	templates ITemplateService
	patterns  IPatternService
	languages ILanguageService
	views     IViewService
	images    IImageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	blobs := blobstore.New(blobstore.Config{
		Root:         filepath.Join(t.TempDir(), "images"),
		Depth:        1,
		MaxBytes:     8000000,
		AllowedTypes: []string{"image/gif", "image/jpeg", "image/png"},
		PublicPrefix: "/api/image/v1",
	})
	cache := memory.NewSchemaCache(time.Minute)
	recorder := &events.Recorder{}
	log := logger.NewNopLogger()

	return &fixture{
		ctx:       context.Background(),
		store:     store,
		blobs:     blobs,
		recorder:  recorder,
		features:  NewFeatureService(store, blobs, cache, recorder, log),
		templates: NewTemplateService(store, blobs, cache, recorder, log),
		patterns:  NewPatternService(store, blobs, cache, recorder, log),
		languages: NewLanguageService(store, recorder, log),
		views:     NewViewService(store, blobs, cache, recorder, log),
		images:    NewImageService(store, blobs, log),
	}
}

func (f *fixture) feature(t *testing.T, name, typ string, required bool) *dto.FeatureResponse {
	t.Helper()
	res, err := f.features.Create(f.ctx, &dto.CreateFeatureRequest{Name: name, Type: typ, Required: required})
	require.NoError(t, err)
	return res
}

func (f *fixture) template(t *testing.T, name string) *dto.TemplateDetailResponse {
	t.Helper()
	res, err := f.templates.Create(f.ctx, &dto.CreateTemplateRequest{Name: name})
	require.NoError(t, err)
	return res
}

func (f *fixture) attach(t *testing.T, template *dto.TemplateDetailResponse, features ...*dto.FeatureResponse) {
	t.Helper()
	for _, feature := range features {
		require.NoError(t, f.templates.AttachFeature(f.ctx, template.Id, feature.Id))
	}
}

func (f *fixture) insert(t *testing.T, template *dto.TemplateDetailResponse, values map[string]dto.FieldInput) *dto.PatternDetailResponse {
	t.Helper()
	res, err := f.patterns.Insert(f.ctx, &dto.InsertPatternRequest{TemplateId: template.Id, Values: values})
	require.NoError(t, err)
	return res
}

func strPtr(s string) *string {
	return &s
}
