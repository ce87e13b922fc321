package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitializeWithoutFileWritesNothing(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, Initialize("error", ""))
	Log.Error("something went wrong")
	_ = Close()

	_, err := os.Stat("server.log")
	assert.True(t, os.IsNotExist(err), "no log file should appear when the path is empty")
}

func TestInitializeWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	require.NoError(t, Initialize("info", path))
	Log.Info("hello")
	_ = Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":    zapcore.DebugLevel,
		"info":     zapcore.InfoLevel,
		"warn":     zapcore.WarnLevel,
		"warning":  zapcore.WarnLevel,
		"error":    zapcore.ErrorLevel,
		"":         zapcore.InfoLevel,
		"nonsense": zapcore.InfoLevel,
		"ERROR":    zapcore.ErrorLevel,
	}

	for input, want := range cases {
		assert.Equal(t, want, parseLogLevel(input), "level %q", input)
	}
}
