package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
server:
  port: 9000
session:
  warn_after: 10m
  expire_after: 12m
notify:
  enabled: true
  api_key: key
  templates:
    confirmation-1: tmpl-1
`)
	require.NoError(t, LoadFromFile(path))
	c := Get()

	assert.True(t, c.App.IsProduction())
	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, 10*time.Minute, c.Session.WarnAfter)
	assert.Equal(t, 12*time.Minute, c.Session.ExpireAfter)
	assert.Equal(t, "tmpl-1", c.Notify.Templates["confirmation-1"])

	// Defaults survive for keys the file omits.
	assert.Equal(t, "FS", c.Uploads.Backend)
	assert.Equal(t, "@every 1m", c.Session.SweepInterval)
	assert.Equal(t, "0.0.0.0:9000", c.Server.GetServerAddr())
}

func TestDatabaseDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "requests", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=requests sslmode=require", pg.GetDSN())

	lite := DatabaseConfig{Driver: "sqlite3", Name: "local.db"}
	assert.Equal(t, "local.db", lite.GetDSN())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.GetRedisAddr())
}
