package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantErr, err != nil, tt.in)
	}
}

func TestNewJSONFormatAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentReport, Output: &buf})

	logger.Info("hello", FieldGroupID, int64(7))
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, ComponentReport, entry[FieldComponent])
	assert.EqualValues(t, 7, entry[FieldGroupID])
}

func TestContextRoundTrip(t *testing.T) {
	logger := New(Config{Component: ComponentWorker, Output: &bytes.Buffer{}})
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "text", Component: ComponentApp, Output: &buf}))

	sl.LogError(context.Background(), "export failed", errors.New("quota"), ComponentSheets, OpExport, NewFields().WithGroup(3, "2025-01"))

	out := buf.String()
	assert.Contains(t, out, "export failed")
	assert.Contains(t, out, "error=quota")
	assert.Contains(t, out, "month=2025-01")
	assert.Contains(t, out, "operation=export")
}

func TestWithTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "text", Component: ComponentCLI, Output: &buf})
	ctx := WithContext(context.Background(), logger)

	id := NewTraceID()
	assert.True(t, strings.HasPrefix(id, "trc_"))
	assert.NotEqual(t, id, NewTraceID())

	ctx = WithTrace(ctx, id)
	assert.Equal(t, id, TraceID(ctx))
	assert.Empty(t, TraceID(context.Background()))

	FromContext(ctx).InfoContext(ctx, "traced")
	assert.Contains(t, buf.String(), "trace_id="+id)
	assert.Equal(t, ComponentCLI, FromContext(ctx).Component())
}
