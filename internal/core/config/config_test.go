package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, c.App.Env)
	assert.Equal(t, 8080, c.App.HTTP.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "dev.db", c.DB.DSN)
	assert.Equal(t, time.Hour, c.JWT.AccessTTL())
	assert.Equal(t, 30*24*time.Hour, c.JWT.RefreshTTL())
	assert.Equal(t, []string{"*"}, c.App.HTTP.CORSAllowOrigins)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	p := writeConfig(t, `
app:
  env: development
  http:
    port: 9090
jwt:
  secret: from-file
db:
  driver: postgres
  dsn: postgres://u:p@localhost/app
`)
	t.Setenv("APP_JWT_SECRET", "from-env")

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "postgres://u:p@localhost/app", c.DB.DSN)
}

func TestLoad_TestingEnvUsesMemoryDB(t *testing.T) {
	p := writeConfig(t, "app:\n  env: testing\n")

	c, err := Load(p)
	require.NoError(t, err)

	assert.True(t, c.IsTesting())
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "file::memory:", c.DB.DSN)
	assert.Equal(t, TestSecret, c.JWT.Secret)
}

func TestLoad_ProductionRequiresSecretAndDSN(t *testing.T) {
	p := writeConfig(t, "app:\n  env: production\n")
	_, err := Load(p)
	require.ErrorIs(t, err, ErrProductionSecret)

	p = writeConfig(t, "app:\n  env: production\njwt:\n  secret: s3cr3t\n")
	_, err = Load(p)
	require.ErrorIs(t, err, ErrProductionDSN)

	p = writeConfig(t, "app:\n  env: production\njwt:\n  secret: s3cr3t\ndb:\n  driver: postgres\n  dsn: postgres://x\n")
	c, err := Load(p)
	require.NoError(t, err)
	assert.True(t, c.Log.JSON)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_UnknownEnv(t *testing.T) {
	p := writeConfig(t, "app:\n  env: staging\n")
	_, err := Load(p)
	require.ErrorIs(t, err, ErrUnknownEnv)
}

func TestLoad_RedisTTLMustBePositive(t *testing.T) {
	p := writeConfig(t, "redis:\n  addr: 127.0.0.1:6379\n  ttl_sec: 0\n")
	_, err := Load(p)
	require.ErrorIs(t, err, ErrNonPositiveCache)

	p = writeConfig(t, "redis:\n  addr: 127.0.0.1:6379\n  ttl_sec: 30\n")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, c.Redis.TTL())

	// 未启用 redis 时不校验
	p = writeConfig(t, "redis:\n  ttl_sec: 0\n")
	_, err = Load(p)
	require.NoError(t, err)
}
