package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Blob     BlobConfig
	Cache    CacheConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // empty disables event publishing
	RedisURL           string // empty keeps the event feed local to this instance
	JwtSecret          string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type BlobConfig struct {
	Root         string
	Depth        int
	MaxBytes     int64
	AllowedTypes []string
	PublicPrefix string
}

type CacheConfig struct {
	SchemaTTL time.Duration
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Blob: BlobConfig{
			Root:         getEnv("BLOB_ROOT", "images"),
			Depth:        getEnvAsInt("BLOB_DEPTH", 1),
			MaxBytes:     int64(getEnvAsInt("BLOB_MAX_BYTES", 8000000)),
			AllowedTypes: getEnvAsList("BLOB_ALLOWED_TYPES", "image/gif,image/jpeg,image/png"),
			PublicPrefix: getEnv("BLOB_PUBLIC_PREFIX", "/api/image/v1"),
		},
		Cache: CacheConfig{
			SchemaTTL: time.Duration(getEnvAsInt("SCHEMA_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Tracing: TracingConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
