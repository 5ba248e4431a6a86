package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 3, cfg.Session.MaxPerUser)
	assert.Equal(t, 5*time.Minute, cfg.Session.ReapInterval)
	assert.Equal(t, 16, cfg.Relay.SendBuffer)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
session:
  ttl: 30m
  max_per_user: 5
providers:
  anthropic_api_key: sk-ant-test
  codegen_model: gpt-4o
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 5, cfg.Session.MaxPerUser)
	// Unset keys keep their defaults.
	assert.Equal(t, 5*time.Minute, cfg.Session.ReapInterval)
	assert.Equal(t, 16, cfg.Relay.SendBuffer)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, "sk-ant-test", cfg.Providers.AnthropicAPIKey)
	assert.Equal(t, "gpt-4o", cfg.Providers.CodegenModel)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
