package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.IdleTTL.Duration)
	assert.Equal(t, "@every 1m", cfg.Sessions.SweepSchedule)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9090},
		"projects": {"base_url": "http://file.example"},
		"logging": {"level": "debug"}
	}`), 0o600))

	t.Setenv("PROJECTS_BASE_URL", "http://env.example")
	t.Setenv("SESSION_IDLE_TTL", "45m")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example,")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http://env.example", cfg.Projects.BaseURL)
	assert.Equal(t, 45*time.Minute, cfg.Sessions.IdleTTL.Duration)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ESTIMATION_BASE_URL=http://estimator.local\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ESTIMATION_BASE_URL") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://estimator.local", cfg.Estimation.BaseURL)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("SERVER_PORT", "not-a-port")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Sessions.IdleTTL = Duration{}
	assert.Error(t, cfg.Validate())
}

func TestGetDatabaseURL(t *testing.T) {
	db := DatabaseConfig{User: "wizard", Password: "secret", Host: "db", Port: 5432, DBName: "project_wizard", SSLMode: "disable"}
	assert.Equal(t, "postgres://wizard:secret@db:5432/project_wizard?sslmode=disable", db.GetDatabaseURL())
}

func TestLoadConfig_DurationStrings(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"estimation": {"timeout": "45s", "cache_ttl": 60000000000},
		"sessions": {"idle_ttl": "90m"}
	}`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Estimation.Timeout.Duration)
	assert.Equal(t, time.Minute, cfg.Estimation.CacheTTL.Duration)
	assert.Equal(t, 90*time.Minute, cfg.Sessions.IdleTTL.Duration)
}

func TestLoadConfig_InvalidDurationString(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"projects": {"timeout": "soon"}}`), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
