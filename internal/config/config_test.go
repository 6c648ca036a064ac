package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/outlets.csv", cfg.Data.OutletsPath)
	assert.Equal(t, "data/population.csv", cfg.Data.PopulationPath)
	assert.Equal(t, "NAME_1", cfg.Data.StateNameField)
	assert.Equal(t, "NAM", cfg.Data.DistrictNameField)
	assert.Empty(t, cfg.Data.AliasesPath)
	assert.Equal(t, 5, cfg.Density.TopN)
	assert.InDelta(t, 2.0, cfg.Density.UnderservedMax, 0.001)
	assert.InDelta(t, 10.0, cfg.Density.SaturatedMin, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 20.0, cfg.Server.RatePerSec, 0.001)
	assert.Equal(t, 40, cfg.Server.Burst)
	assert.Equal(t, time.Hour, cfg.Server.SessionTTL())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  outlets_path: /srv/outlets.csv
  districts_path: /srv/districts.shp
  district_name_field: ADM2_EN
log:
  level: debug
  format: console
server:
  port: 9090
  cors_origins:
    - https://dash.example.com
density:
  top_n: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/outlets.csv", cfg.Data.OutletsPath)
	assert.Equal(t, "/srv/districts.shp", cfg.Data.DistrictsPath)
	assert.Equal(t, "ADM2_EN", cfg.Data.DistrictNameField)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10, cfg.Density.TopN)
	// Defaults still apply for unset values
	assert.Equal(t, "NAME_1", cfg.Data.StateNameField)
	assert.Equal(t, 40, cfg.Server.Burst)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  population_path: pop.xlsx
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("OUTLETS_DATA_POPULATION_PATH", "/data/pop.csv")
	t.Setenv("OUTLETS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "/data/pop.csv", cfg.Data.PopulationPath)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("OUTLETS_SERVER_PORT", "3000")
	t.Setenv("OUTLETS_DENSITY_SATURATED_MIN", "12.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.InDelta(t, 12.5, cfg.Density.SaturatedMin, 0.001)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("data: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
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

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Data = DataConfig{
		OutletsPath:       "outlets.csv",
		PopulationPath:    "population.csv",
		StatesPath:        "states.geojson",
		DistrictsPath:     "districts.geojson",
		StateNameField:    "NAME_1",
		DistrictNameField: "NAM",
	}
	cfg.Density = DensityConfig{TopN: 5, UnderservedMax: 2, SaturatedMin: 10}
	cfg.Server = ServerConfig{Port: 8080, RatePerSec: 20, Burst: 40, SessionTTLMins: 60}
	return cfg
}

func TestValidateData_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("data"))
}

func TestValidateData_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Data.OutletsPath = ""
	cfg.Data.DistrictNameField = " "

	err := cfg.Validate("data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.outlets_path is required")
	assert.Contains(t, err.Error(), "data.district_name_field is required")
}

func TestValidateData_IgnoresServer(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0
	assert.NoError(t, cfg.Validate("data"))
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidServer(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0
	cfg.Server.Burst = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
	assert.Contains(t, err.Error(), "server.burst must be > 0")
}

func TestValidateThresholds(t *testing.T) {
	cfg := validDefaults()
	cfg.Density.UnderservedMax = 10
	cfg.Density.SaturatedMin = 10

	err := cfg.Validate("data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "density.underserved_max")
}

func TestValidateTopN(t *testing.T) {
	cfg := validDefaults()
	cfg.Density.TopN = 0

	err := cfg.Validate("data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "density.top_n must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
