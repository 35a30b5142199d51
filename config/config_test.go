package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 280, cfg.Message.MaxLength)
	assert.Equal(t, "log", cfg.Notify.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Cache.FeedTTL)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("database:\n  driver: sqlite\n  dsn: \"file::memory:\"\nmessage:\n  max_length: 140\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("SOCIALFEED_SERVER_PORT", "9090")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, 140, cfg.Message.MaxLength)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database:\n  driver: mysql\n"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidateRejectsMessageLengthAboveColumn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("message:\n  max_length: 500\n"), 0o600))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "message.max_length")
}
