package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	prevLogger, prevLevel, prevTime := log.Logger, zerolog.GlobalLevel(), zerolog.TimeFieldFormat
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
		zerolog.TimeFieldFormat = prevTime
	})
}

func TestSetupWritesJSONToFile(t *testing.T) {
	restoreGlobals(t)
	path := filepath.Join(t.TempDir(), "ddtft.log")

	require.NoError(t, Setup(LogConfig{Level: "debug", Format: "json", Output: path}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	l := WithComponent("batch")
	l.Info().Str("file", "DDV_1.pdf").Msg("Document parsed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"component":"batch"`)
	assert.Contains(t, line, `"file":"DDV_1.pdf"`)
	assert.Contains(t, line, `"message":"Document parsed"`)
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	restoreGlobals(t)
	assert.Error(t, Setup(LogConfig{Level: "loud", Format: "json", Output: "stderr"}))
}

func TestWithFields(t *testing.T) {
	restoreGlobals(t)
	path := filepath.Join(t.TempDir(), "fields.log")
	require.NoError(t, Setup(LogConfig{Level: "info", Format: "json", Output: path}))

	l := WithFields(map[string]interface{}{"worker": 3})
	l.Warn().Msg("slow document")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"worker":3`)
	assert.Contains(t, string(data), `"level":"warn"`)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "stderr", cfg.Output)
	assert.Equal(t, "info", cfg.Level)
}
