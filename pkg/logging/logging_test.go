// pkg/logging/logging_test.go
package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{input: "debug", want: zerolog.DebugLevel},
		{input: "info", want: zerolog.InfoLevel},
		{input: "WARN", want: zerolog.WarnLevel},
		{input: "error", want: zerolog.ErrorLevel},
		{input: "", want: zerolog.InfoLevel},
		{input: "bogus", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestConfigureGlobalLogging_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetLogWriter(&buf)
	t.Cleanup(func() { SetLogWriter(os.Stderr) })

	require.NoError(t, ConfigureGlobalLogging("info", "json"))

	log.Info().Str("scan_id", "5").Msg("scan launched")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event), "json format must emit one JSON object per event")
	assert.Equal(t, "scan launched", event["message"])
	assert.Equal(t, "5", event["scan_id"])
}

func TestConfigureGlobalLogging_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	SetLogWriter(&buf)
	t.Cleanup(func() { SetLogWriter(os.Stderr) })

	require.NoError(t, ConfigureGlobalLogging("info", "text"))

	log.Info().Msg("batch complete")

	out := buf.String()
	assert.Contains(t, out, "batch complete")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "text format must not emit raw JSON")
}

func TestConfigureGlobalLogging_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetLogWriter(&buf)
	t.Cleanup(func() { SetLogWriter(os.Stderr) })

	require.NoError(t, ConfigureGlobalLogging("error", "json"))

	log.Info().Msg("invisible")
	assert.Empty(t, buf.String(), "info events must be filtered at error level")

	log.Error().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
