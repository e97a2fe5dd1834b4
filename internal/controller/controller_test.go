package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/internal/pkg/serverutils"
	"pattern-sphere-be/internal/repository/memory"
	"pattern-sphere-be/internal/repository/memstore"
	"pattern-sphere-be/internal/service"
	"pattern-sphere-be/pkg/blobstore"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func newTestApp(t *testing.T) *fiber.App {
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
	log := logger.NewNopLogger()

	templates := service.NewTemplateService(store, blobs, cache, nil, log)
	patterns := service.NewPatternService(store, blobs, cache, nil, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api")
	open := func(ctx *fiber.Ctx) error { return ctx.Next() }

	NewFeatureController(service.NewFeatureService(store, blobs, cache, nil, log)).RegisterRoutes(api, open)
	NewTemplateController(templates, patterns).RegisterRoutes(api, open)
	NewPatternController(patterns).RegisterRoutes(api, open)
	NewImageController(service.NewImageService(store, blobs, log)).RegisterRoutes(api)
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request, out interface{}) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestPatternMultipartFlow(t *testing.T) {
	app := newTestApp(t)

	var feature serverutils.BaseResponse[dto.FeatureResponse]
	status := send(t, app, jsonRequest("POST", "/api/feature/v1", map[string]interface{}{"name": "title", "type": "string", "required": true}), nil)
	require.Equal(t, fiber.StatusCreated, status)
	status = send(t, app, jsonRequest("POST", "/api/feature/v1", map[string]interface{}{"name": "photo", "type": "image"}), &feature)
	require.Equal(t, fiber.StatusCreated, status)

	var template serverutils.BaseResponse[dto.TemplateDetailResponse]
	status = send(t, app, jsonRequest("POST", "/api/template/v1", map[string]interface{}{"name": "Basic"}), &template)
	require.Equal(t, fiber.StatusCreated, status)
	status = send(t, app, httptest.NewRequest("POST", "/api/template/v1/"+template.Data.Id.String()+"/features/"+feature.Data.Id.String(), nil), nil)
	require.Equal(t, fiber.StatusOK, status)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	payload, _ := json.Marshal(map[string]interface{}{
		"template_id": template.Data.Id,
		"values": map[string]interface{}{
			"title": map[string]string{"value": "Street Cafe"},
			"photo": map[string]string{"alt_text": "tables outside"},
		},
	})
	require.NoError(t, w.WriteField("payload", string(payload)))
	part, err := w.CreateFormFile("f-photo", "cafe.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/pattern/v1", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	var created serverutils.BaseResponse[dto.PatternDetailResponse]
	status = send(t, app, req, &created)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Street Cafe", *created.Data.Features["title"].Value)
	photo := created.Data.Features["photo"]
	require.NotNil(t, photo.Hash)
	assert.Equal(t, blobstore.Hash(pngBytes), *photo.Hash)
	assert.Equal(t, "tables outside", *photo.AltText)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/image/v1/"+*photo.Hash, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	served, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, served)

	var list serverutils.BaseResponse[[]dto.PatternSummaryResponse]
	status = send(t, app, httptest.NewRequest("GET", "/api/pattern/v1?template_id="+template.Data.Id.String(), nil), &list)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Street Cafe", list.Data[0].Title)
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp(t)
	send(t, app, jsonRequest("POST", "/api/feature/v1", map[string]interface{}{"name": "title", "type": "string"}), nil)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		kind   string
	}{
		{"invalid identifier", jsonRequest("POST", "/api/feature/v1", map[string]interface{}{"name": "f-x", "type": "string"}), fiber.StatusBadRequest, "invalid_identifier"},
		{"duplicate name", jsonRequest("POST", "/api/feature/v1", map[string]interface{}{"name": "title", "type": "text"}), fiber.StatusConflict, "duplicate_name"},
		{"bad id", httptest.NewRequest("GET", "/api/pattern/v1/not-an-id", nil), fiber.StatusUnprocessableEntity, "validation"},
		{"missing pattern", httptest.NewRequest("GET", "/api/pattern/v1/00000000-0000-0000-0000-000000000001", nil), fiber.StatusNotFound, "not_found"},
		{"unknown image", httptest.NewRequest("GET", "/api/image/v1/"+blobstore.Hash([]byte("none")), nil), fiber.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body serverutils.ErrorResponse
			status := send(t, app, tt.req, &body)
			assert.Equal(t, tt.status, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.kind, body.Kind)
		})
	}
}
