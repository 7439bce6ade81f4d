package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	View    ViewConfig    `yaml:"view" mapstructure:"view"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	AQI     AQIConfig     `yaml:"aqi" mapstructure:"aqi"`
	Rules   RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the boundaries and records documents. Locators may be
// http(s)://, ftp://, file:// URLs or filesystem paths.
type DataConfig struct {
	Boundaries   string `yaml:"boundaries" mapstructure:"boundaries"`
	Records      string `yaml:"records" mapstructure:"records"`
	NameProperty string `yaml:"name_property" mapstructure:"name_property"`
}

// ViewConfig holds the initial map view handed to clients.
type ViewConfig struct {
	DefaultCategory string    `yaml:"default_category" mapstructure:"default_category"`
	DefaultYear     int       `yaml:"default_year" mapstructure:"default_year"`
	Center          []float64 `yaml:"center" mapstructure:"center"`
	Zoom            int       `yaml:"zoom" mapstructure:"zoom"`
}

// FetchConfig configures document downloads.
type FetchConfig struct {
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FTPTimeoutSecs int    `yaml:"ftp_timeout_secs" mapstructure:"ftp_timeout_secs"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
}

// AQIConfig configures live air-quality enrichment. Enrichment is disabled
// when Token is empty.
type AQIConfig struct {
	Token       string            `yaml:"token" mapstructure:"token"`
	BaseURL     string            `yaml:"base_url" mapstructure:"base_url"`
	Field       string            `yaml:"field" mapstructure:"field"`
	RateLimit   float64           `yaml:"rate_limit" mapstructure:"rate_limit"`
	Concurrency int               `yaml:"concurrency" mapstructure:"concurrency"`
	TimeoutSecs int               `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Stations    map[string]string `yaml:"stations" mapstructure:"stations"`
}

// Enabled reports whether live lookups should run.
func (c AQIConfig) Enabled() bool { return c.Token != "" }

// RulesConfig points at an optional color rule override file.
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP render surface.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// MetricsConfig configures Prometheus collectors.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from ./config.yaml (optional) and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path and environment. An empty path
// falls back to an optional ./config.yaml; an explicit path must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.boundaries", "india-states.geojson")
	v.SetDefault("data.records", "data.json")
	v.SetDefault("data.name_property", "st_nm")
	v.SetDefault("view.default_category", "costOfLiving")
	v.SetDefault("view.center", []float64{22.5, 82.5})
	v.SetDefault("view.zoom", 5)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.ftp_timeout_secs", 30)
	v.SetDefault("fetch.user_agent", "state-dashboard/1.0")
	v.SetDefault("aqi.token", "")
	v.SetDefault("aqi.base_url", "https://api.waqi.info")
	v.SetDefault("aqi.field", "aqi")
	v.SetDefault("aqi.rate_limit", 5)
	v.SetDefault("aqi.concurrency", 4)
	v.SetDefault("aqi.timeout_secs", 10)
	v.SetDefault("rules.path", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("metrics.namespace", "dashboard")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Mode is "serve" for the
// HTTP server or "render" for the one-shot CLI commands.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Data.Boundaries == "" {
		errs = append(errs, "data.boundaries is required")
	}
	if c.Data.Records == "" {
		errs = append(errs, "data.records is required")
	}
	if c.AQI.Enabled() && c.AQI.Concurrency < 1 {
		errs = append(errs, "aqi.concurrency must be >= 1 when aqi.token is set")
	}
	if c.AQI.RateLimit < 0 {
		errs = append(errs, "aqi.rate_limit must be >= 0")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	case "render":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
