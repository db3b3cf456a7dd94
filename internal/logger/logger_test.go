package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLevel(t *testing.T) {
	base := zerolog.Nop()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		got := WithLevel(base, tt.in)
		assert.Equal(t, tt.want, got.GetLevel(), tt.in)
	}
}

func TestProductionLoggerWritesJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(NewProduction(&buf), "cache")

	l.Info().Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cache", entry["component"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abcd…wxyz", Preview("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "*****", Preview("short"))
	assert.Equal(t, "", Preview(""))
}

func TestFormatLevel(t *testing.T) {
	assert.Contains(t, formatLevel("info"), "INF")
	assert.Contains(t, formatLevel("warn"), "WRN")
	assert.Contains(t, formatLevel("custom"), "CUS")
	assert.Contains(t, formatLevel("ok"), "OK")
}
