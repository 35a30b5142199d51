package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("bogus"))
}

func TestPackageHelpersWriteToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := L()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	Warn("queue full", zap.String("to", "a@x.com"))
	Debug("hidden")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "queue full", entry.Message)
	assert.Equal(t, "a@x.com", entry.ContextMap()["to"])
}

func TestNewWithRotatingFile(t *testing.T) {
	lg, err := New(Config{Level: "info", File: filepath.Join(t.TempDir(), "logs", "app.log")})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
}
