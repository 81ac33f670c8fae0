package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			New(Config{Level: tt.level, Output: &bytes.Buffer{}})
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestNew_StructuredOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})
	log.Info().Str("component", "test").Msg("hello")
	log.Debug().Msg("suppressed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
	assert.NotContains(t, buf.String(), "suppressed")
}
