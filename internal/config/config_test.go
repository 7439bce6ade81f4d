package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "india-states.geojson", cfg.Data.Boundaries)
	assert.Equal(t, "data.json", cfg.Data.Records)
	assert.Equal(t, "st_nm", cfg.Data.NameProperty)
	assert.Equal(t, "costOfLiving", cfg.View.DefaultCategory)
	assert.Equal(t, []float64{22.5, 82.5}, cfg.View.Center)
	assert.Equal(t, 5, cfg.View.Zoom)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, "https://api.waqi.info", cfg.AQI.BaseURL)
	assert.Equal(t, "aqi", cfg.AQI.Field)
	assert.Equal(t, 4, cfg.AQI.Concurrency)
	assert.InDelta(t, 5.0, cfg.AQI.RateLimit, 0.001)
	assert.Empty(t, cfg.AQI.Token)
	assert.False(t, cfg.AQI.Enabled())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "dashboard", cfg.Metrics.Namespace)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  boundaries: https://example.com/states.geojson
  records: ftp://data.example.com/pub/records.json
aqi:
  stations:
    NCT of Delhi: delhi
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/states.geojson", cfg.Data.Boundaries)
	assert.Equal(t, "ftp://data.example.com/pub/records.json", cfg.Data.Records)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "delhi", cfg.AQI.Stations["nct of delhi"], "viper lowercases map keys")
	// Defaults still apply for unset values
	assert.Equal(t, "st_nm", cfg.Data.NameProperty)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  records: local.json
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DASHBOARD_DATA_RECORDS", "remote.json")
	t.Setenv("DASHBOARD_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "remote.json", cfg.Data.Records)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadTokenFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DASHBOARD_AQI_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.AQI.Token)
	assert.True(t, cfg.AQI.Enabled())
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("data: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFileExplicitPath(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("view:\n  default_category: aqi\nrules:\n  path: colors.yaml\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aqi", cfg.View.DefaultCategory)
	assert.Equal(t, "colors.yaml", cfg.Rules.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFileMissingPath(t *testing.T) {
	chdirTemp(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with the required fields populated.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Data.Boundaries = "states.geojson"
	cfg.Data.Records = "data.json"
	cfg.Server.Port = 8080
	cfg.AQI.Concurrency = 4
	return cfg
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("serve"))
	assert.NoError(t, validDefaults().Validate("render"))
}

func TestValidate_MissingDocuments(t *testing.T) {
	cfg := validDefaults()
	cfg.Data.Boundaries = ""
	cfg.Data.Records = ""

	err := cfg.Validate("render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.boundaries is required")
	assert.Contains(t, err.Error(), "data.records is required")
}

func TestValidate_ServePort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")

	assert.NoError(t, cfg.Validate("render"), "port only matters when serving")
}

func TestValidate_AQIConcurrency(t *testing.T) {
	cfg := validDefaults()
	cfg.AQI.Concurrency = 0
	assert.NoError(t, cfg.Validate("render"), "ignored while enrichment is disabled")

	cfg.AQI.Token = "tok"
	err := cfg.Validate("render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aqi.concurrency")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
