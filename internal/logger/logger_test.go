package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, Setup(false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, Setup(true).GetLevel())
}

func TestSetupWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&buf, false)

	l.Debug().Msg("hidden")
	l.Info().Str("bundle", "theme").Msg("Building assets")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "theme", line["bundle"])
	assert.Equal(t, "Building assets", line["message"])
	assert.Contains(t, line, "time")
	assert.Contains(t, line["caller"], "logger_test.go")
}

func TestSetupDevWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&buf, true)

	l.Debug().Str("file", "styles/theme.css").Msg("Wrote file")

	out := buf.String()
	assert.Contains(t, out, "Wrote file")
	assert.Contains(t, out, "styles/theme.css")
	assert.NotContains(t, out, "{")
	assert.Contains(t, out, "logger_test.go")
}
