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
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwtSecret: s3cret\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, int64(5*1024*1024), cfg.CSV.MaxBytes)
	assert.Equal(t, 1000, cfg.CSV.MaxRows)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ACCESSFLOW_SERVER_PORT", "9999")
	t.Setenv("ACCESSFLOW_AUTH_JWTSECRET", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Configuration{
		Database: DatabaseConfiguration{Driver: "mysql", DSN: "x"},
		CSV:      CSVConfiguration{MaxBytes: 1, MaxRows: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = DriverPostgres
	assert.Error(t, cfg.Validate(), "secret required outside dev mode")

	cfg.Auth.DevMode = true
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "dev-secret-only", cfg.Auth.JWTSecret)
}
