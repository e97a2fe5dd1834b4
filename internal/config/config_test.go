package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BLOB_ALLOWED_TYPES", "image/png, image/gif ,")
	t.Setenv("BLOB_MAX_BYTES", "not-a-number")
	t.Setenv("SCHEMA_CACHE_TTL_SECONDS", "60")
	t.Setenv("DB_DRIVER", "memory")

	cfg := Load()

	assert.Equal(t, []string{"image/png", "image/gif"}, cfg.Blob.AllowedTypes)
	assert.Equal(t, int64(8000000), cfg.Blob.MaxBytes)
	assert.Equal(t, time.Minute, cfg.Cache.SchemaTTL)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "/api/image/v1", cfg.Blob.PublicPrefix)
}
