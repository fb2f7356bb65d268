package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration settings for a scout run. Every field has a default,
// so a run needs no configuration at all; SCOUT_* environment variables override them.
type Config struct {
	Env         string         `mapstructure:"env"`          // Env is the current environment: local, development, production.
	OutputFile  string         `mapstructure:"output_file"`  // OutputFile receives the JSON result, overwritten per run.
	LogFile     string         `mapstructure:"log_file"`     // LogFile is appended to on every run.
	MetricsFile string         `mapstructure:"metrics_file"` // MetricsFile, when set, receives a Prometheus textfile at exit.
	UserAgent   string         `mapstructure:"user_agent"`   // UserAgent is sent to every upstream API.
	Provider    ProviderConfig `mapstructure:"provider"`
	Geocoder    GeocoderConfig `mapstructure:"geocoder"`
	Search      SearchConfig   `mapstructure:"search"`
	Database    PostgresConfig `mapstructure:"db"` // Database enables the result archive when Host is set.
}

// ProviderConfig selects the geocoding provider.
type ProviderConfig struct {
	Type   string `mapstructure:"type"` // nominatim or google
	APIKey string `mapstructure:"key"`  // required for google
}

// GeocoderConfig tunes the Nominatim lookups.
type GeocoderConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Delay   time.Duration `mapstructure:"delay"` // courtesy delay before each lookup
}

// SearchConfig tunes the Overpass feature search.
type SearchConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ServerTimeout int           `mapstructure:"server_timeout"` // seconds, sent as [timeout:N]
	Radius        int           `mapstructure:"radius"`         // meters
	TagKey        string        `mapstructure:"tag_key"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// Enabled reports whether the archive database is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

var defaults = map[string]any{
	"env":                   "production",
	"output_file":           "businesses.json",
	"log_file":              "business_search.log",
	"metrics_file":          "",
	"user_agent":            "SimpleLocalBusinessParser/1.0",
	"provider.type":         "nominatim",
	"provider.key":          "",
	"geocoder.url":          "https://nominatim.openstreetmap.org/search",
	"geocoder.timeout":      "30s",
	"geocoder.delay":        "1s",
	"search.url":            "https://overpass-api.de/api/interpreter",
	"search.timeout":        "120s",
	"search.server_timeout": 90,
	"search.radius":         10000,
	"search.tag_key":        "amenity",
	"search.max_retries":    3,
	"db.host":               "",
	"db.port":               "5432",
	"db.user":               "",
	"db.password":           "",
	"db.name":               "scout",
}

// Load reads the defaults and applies SCOUT_* environment overrides,
// e.g. SCOUT_SEARCH_MAX_RETRIES=5 or SCOUT_DB_HOST=localhost.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func (c *Config) validate() error {
	var errs []error
	if c.Search.MaxRetries < 1 {
		errs = append(errs, errors.New("search.max_retries must be at least 1"))
	}
	if c.Search.Radius < 1 {
		errs = append(errs, errors.New("search.radius must be positive"))
	}
	if c.Geocoder.Timeout <= 0 || c.Search.Timeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.OutputFile == "" || c.LogFile == "" {
		errs = append(errs, errors.New("output_file and log_file must not be empty"))
	}

	return errors.Join(errs...)
}
