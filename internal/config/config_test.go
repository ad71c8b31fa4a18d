package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("SOURCE_BACKEND", "placeholder")
	os.Setenv("RENDER_DPI", "72.5")
	defer os.Unsetenv("DB_MAX_OPEN_CONNS")
	defer os.Unsetenv("MINIO_USE_SSL")
	defer os.Unsetenv("SOURCE_BACKEND")
	defer os.Unsetenv("RENDER_DPI")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "placeholder", cfg.Source.Backend)
	assert.Equal(t, 72.5, cfg.Render.DPI)
	assert.Equal(t, 15, cfg.Viewer.FetchTimeoutSec)
	assert.Equal(t, "viewer", cfg.NATS.SubjectPrefix)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "grpc", cfg.Tracing.Protocol)
	assert.Equal(t, 1.0, cfg.Tracing.SamplerArg)
}

func TestLoad_Tracing(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_TRACES_SAMPLER", "traceidratio")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	tc := Load().Tracing
	assert.True(t, tc.Disabled)
	assert.Equal(t, "pdfviewer", tc.ServiceName)
	assert.Equal(t, "collector:4317", tc.Endpoint)
	assert.Equal(t, "traceidratio", tc.Sampler)
	assert.Equal(t, 0.25, tc.SamplerArg)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{TimeZone: "Local"}
	assert.Equal(t, time.Local, cfg.Location())

	cfg.TimeZone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestFetchTimeout(t *testing.T) {
	assert.Equal(t, 3*time.Second, ViewerConfig{FetchTimeoutSec: 3}.FetchTimeout())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_FLOAT_VAR"

	os.Setenv(key, "0.25")
	assert.Equal(t, 0.25, getEnvFloat(key, 1))

	os.Setenv(key, "nope")
	assert.Equal(t, 1.5, getEnvFloat(key, 1.5))

	os.Unsetenv(key)
	assert.Equal(t, 1.5, getEnvFloat(key, 1.5))
}
