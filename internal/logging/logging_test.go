package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC, "viewer")

	l.Info("session_opened", Fields{"session_id": "abc"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "session_opened", entry["event"])
	assert.Equal(t, "viewer", entry["component"])
	assert.Equal(t, "abc", entry["session_id"])
	assert.NotEmpty(t, entry["ts"])
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil, "database")

	l.Error("db_migration_failed", errors.New("boom"), nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error_message"])
}

func TestLogger_ErrorLeavesCallerFieldsUntouched(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC, "viewer")
	shared := Fields{"session_id": "abc"}

	l.Error("page_load_failed", errors.New("timeout"), shared)
	l.Info("page_viewed", shared)

	assert.Equal(t, Fields{"session_id": "abc"}, shared)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.NotContains(t, second, "error_message")
}

func TestLogger_WithSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, time.UTC, "app")
	base.Info("a", nil)
	base.With("source").Warn("b", Fields{"page": 3})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "source", second["component"])
	assert.Equal(t, "warn", second["level"])
	assert.Equal(t, float64(3), second["page"])
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
}
