package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "pantalla", cfg.Database.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 60, cfg.RateLimit.ScreenFetchRate)
	assert.Equal(t, "30 3 * * *", cfg.Jobs.RetentionSchedule)
	assert.Equal(t, 30*24*time.Hour, cfg.Jobs.RetentionKeepFor)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  name: pantalla_test
rateLimit:
  screenFetchRate: 120
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "pantalla_test", cfg.Database.Name)
	assert.Equal(t, 120, cfg.RateLimit.ScreenFetchRate)
	// Untouched sections keep their defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
`), 0o600))

	t.Setenv("PANTALLA_SERVER_PORT", "9191")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("PANTALLA_JOBS_RETENTION_KEEP_FOR", "168h")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 7*24*time.Hour, cfg.Jobs.RetentionKeepFor)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PANTALLA_SERVER_PORT", "70000")

	_, err := Load("")
	assert.Error(t, err)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "pantalla",
		User:     "pantalla",
		Password: "secret",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 dbname=pantalla user=pantalla password=secret sslmode=disable",
		d.ConnectionString(),
	)
}
