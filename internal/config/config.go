package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ViewerConfig controls viewer session behavior.
type ViewerConfig struct {
	FetchTimeoutSec   int
	SessionIdleTTLSec int
	ReapIntervalSec   int
}

// SourceConfig selects and tunes the page source backing viewer sessions.
// Backend is one of "storage", "http" or "placeholder".
type SourceConfig struct {
	Backend               string
	HTTPBaseURL           string
	HTTPRate              float64
	HTTPBurst             int
	ThumbnailURLExpirySec int
}

// RenderConfig holds rasterisation settings used when a PDF is uploaded.
type RenderConfig struct {
	DPI            float64
	ThumbnailWidth int
}

// NATSConfig holds the optional event bus settings. An empty URL disables publishing.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// TracingConfig mirrors the standard OTEL_* variables the service honours.
type TracingConfig struct {
	Disabled    bool
	ServiceName string
	Protocol    string
	Endpoint    string
	Sampler     string
	SamplerArg  float64
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	TimeZone string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Viewer   ViewerConfig
	Source   SourceConfig
	Render   RenderConfig
	NATS     NATSConfig
	Tracing  TracingConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		TimeZone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Viewer: ViewerConfig{
			FetchTimeoutSec:   getEnvInt("VIEWER_FETCH_TIMEOUT_SEC", 15),
			SessionIdleTTLSec: getEnvInt("VIEWER_SESSION_IDLE_TTL_SEC", 1800),
			ReapIntervalSec:   getEnvInt("VIEWER_REAP_INTERVAL_SEC", 60),
		},
		Source: SourceConfig{
			Backend:               getEnv("SOURCE_BACKEND", "storage"),
			HTTPBaseURL:           getEnv("SOURCE_HTTP_BASE_URL", ""),
			HTTPRate:              getEnvFloat("SOURCE_HTTP_RATE", 20),
			HTTPBurst:             getEnvInt("SOURCE_HTTP_BURST", 10),
			ThumbnailURLExpirySec: getEnvInt("SOURCE_THUMBNAIL_URL_EXPIRY_SEC", 900),
		},
		Render: RenderConfig{
			DPI:            getEnvFloat("RENDER_DPI", 110),
			ThumbnailWidth: getEnvInt("RENDER_THUMBNAIL_WIDTH", 160),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "viewer"),
		},
		Tracing: TracingConfig{
			Disabled:    getEnvBool("OTEL_SDK_DISABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "pdfviewer"),
			Protocol:    getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
			Sampler:     getEnv("OTEL_TRACES_SAMPLER", "parentbased_traceidratio"),
			SamplerArg:  getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
}

// Location resolves TimeZone, falling back to UTC for unknown names.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchTimeout returns the per-fetch deadline for page sources.
func (c ViewerConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
