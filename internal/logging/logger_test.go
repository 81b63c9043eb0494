package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Name = "TestService"

	logger, err := New(cfg, zapcore.AddSync(&buf))
	require.NoError(t, err)
	logger.Info("Entered", zap.String("text", "A"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "TestService.")
	assert.Contains(t, out, "Entered")
	assert.Contains(t, out, `"text": "A"`)
	assert.NotContains(t, out, colorGreen)
}

func TestNew_ColorizedLevels(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Color = true

	logger, err := New(cfg, zapcore.AddSync(&buf))
	require.NoError(t, err)
	logger.Warn("careful")
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), colorYellow+"WARN"+colorReset)
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "warn"

	logger, err := New(cfg, zapcore.AddSync(&buf))
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	_, err := New(cfg, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"

	logger, err := New(cfg, zapcore.AddSync(&buf))
	require.NoError(t, err)
	logger.Info("structured", zap.Int("record", 2))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "structured", entry["msg"])
	assert.Equal(t, float64(2), entry["record"])
}

func TestNew_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	cfg := DefaultConfig()
	cfg.LogFile = logFile

	logger, err := New(cfg, zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.True(t, strings.HasPrefix(line, "{"), "file output should be JSON: %s", line)
	assert.Contains(t, line, "to file")
}
