package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Density DensityConfig `yaml:"density" mapstructure:"density"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the four input datasets.
type DataConfig struct {
	OutletsPath       string `yaml:"outlets_path" mapstructure:"outlets_path"`
	PopulationPath    string `yaml:"population_path" mapstructure:"population_path"`
	StatesPath        string `yaml:"states_path" mapstructure:"states_path"`
	DistrictsPath     string `yaml:"districts_path" mapstructure:"districts_path"`
	StateNameField    string `yaml:"state_name_field" mapstructure:"state_name_field"`
	DistrictNameField string `yaml:"district_name_field" mapstructure:"district_name_field"`
	// AliasesPath is an optional YAML file of confirmed name renames.
	AliasesPath string `yaml:"aliases_path" mapstructure:"aliases_path"`
}

// DensityConfig tunes the chart and insight views.
type DensityConfig struct {
	TopN           int     `yaml:"top_n" mapstructure:"top_n"`
	UnderservedMax float64 `yaml:"underserved_max" mapstructure:"underserved_max"`
	SaturatedMin   float64 `yaml:"saturated_min" mapstructure:"saturated_min"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	CORSOrigins    []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RatePerSec     float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst          int      `yaml:"burst" mapstructure:"burst"`
	SessionTTLMins int      `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
}

// SessionTTL returns the idle session lifetime.
func (s ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLMins) * time.Minute
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTLETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.outlets_path", "data/outlets.csv")
	v.SetDefault("data.population_path", "data/population.csv")
	v.SetDefault("data.states_path", "data/states.geojson")
	v.SetDefault("data.districts_path", "data/districts.geojson")
	v.SetDefault("data.state_name_field", "NAME_1")
	v.SetDefault("data.district_name_field", "NAM")
	v.SetDefault("data.aliases_path", "")
	v.SetDefault("density.top_n", 5)
	v.SetDefault("density.underserved_max", 2.0)
	v.SetDefault("density.saturated_min", 10.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_per_sec", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.session_ttl_mins", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is "data" for commands
// that only read the datasets and "serve" for the API server.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "data", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	required := []struct{ key, val string }{
		{"data.outlets_path", c.Data.OutletsPath},
		{"data.population_path", c.Data.PopulationPath},
		{"data.states_path", c.Data.StatesPath},
		{"data.districts_path", c.Data.DistrictsPath},
		{"data.state_name_field", c.Data.StateNameField},
		{"data.district_name_field", c.Data.DistrictNameField},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			problems = append(problems, r.key+" is required")
		}
	}
	if c.Density.TopN <= 0 {
		problems = append(problems, "density.top_n must be > 0")
	}
	if c.Density.UnderservedMax >= c.Density.SaturatedMin {
		problems = append(problems, fmt.Sprintf("density.underserved_max (%g) must be below density.saturated_min (%g)",
			c.Density.UnderservedMax, c.Density.SaturatedMin))
	}

	if mode == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RatePerSec <= 0 {
			problems = append(problems, "server.rate_per_sec must be > 0")
		}
		if c.Server.Burst <= 0 {
			problems = append(problems, "server.burst must be > 0")
		}
		if c.Server.SessionTTLMins < 0 {
			problems = append(problems, "server.session_ttl_mins must be >= 0")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid %s config: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
