package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
server:
  port: ":8080"
database:
  url: "postgres://localhost/test"
auth:
  access_token_secret: "access"
  refresh_token_secret: "refresh"
  access_token_ttl_minutes: 5
  refresh_token_ttl_days: 7
storage:
  bucket: "avatars"
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/test", cfg.Database.URL)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL())
	assert.Equal(t, "avatars", cfg.Storage.Bucket)
}

func TestLoadConfigDefaultsTTLs(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
auth:
  access_token_secret: "access"
  refresh_token_secret: "refresh"
`))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, 10*24*time.Hour, cfg.RefreshTokenTTL())
}

func TestLoadConfigEnvOverridesSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "env-access")
	t.Setenv("REFRESH_TOKEN_SECRET", "env-refresh")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.Equal(t, "env-access", cfg.Auth.AccessTokenSecret)
	assert.Equal(t, "env-refresh", cfg.Auth.RefreshTokenSecret)
}

func TestLoadConfigRejectsMissingSecrets(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
auth:
  access_token_secret: "access"
`))
	assert.Error(t, err)
}

func TestLoadConfigRejectsSharedSecret(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
auth:
  access_token_secret: "same"
  refresh_token_secret: "same"
`))
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
