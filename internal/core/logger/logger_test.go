package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := New(Options{Level: "info", JSON: true, Output: zapcore.AddSync(&buf)})

	l.Debug("hidden")
	l.Info("user created", zap.Uint64("user_id", 7))
	cleanup()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "user created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 7, entry["user_id"])
	assert.Contains(t, entry, "ts")
}

func TestNew_RotateFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "api.log")
	var buf bytes.Buffer
	l, cleanup := New(Options{
		Level:  "debug",
		JSON:   true,
		Output: zapcore.AddSync(&buf),
		Rotate: FileRotate{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Warn("disk entry")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "disk entry")
	assert.Contains(t, buf.String(), "disk entry")
}

func TestToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := New(Options{Level: "debug", JSON: true, Output: zapcore.AddSync(&buf)})
	defer cleanup()

	_, err := ToWriter(l, zapcore.InfoLevel).Write([]byte("[GIN-debug] GET /health\n"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[GIN-debug] GET /health")
}
