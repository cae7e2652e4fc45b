package config

import (
	"crossroads-gps/internal/domain"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "XRDS"

// Config holds all program configuration.
type Config struct {
	Overpass OverpassConfig  `mapstructure:"overpass"`
	Geofence domain.Geofence `mapstructure:"geofence"`
	Query    QueryConfig     `mapstructure:"query"`
	Output   OutputConfig    `mapstructure:"output"`
	Log      LogConfig       `mapstructure:"log"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Tracing  TracingConfig   `mapstructure:"tracing"`
}

type OverpassConfig struct {
	URL          string        `mapstructure:"url" validate:"required,url"`
	Method       string        `mapstructure:"method" validate:"oneof=GET POST get post"`
	Tries        int           `mapstructure:"tries" validate:"min=1,max=10"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RatePerSec   float64       `mapstructure:"rate_per_sec" validate:"gte=0"`
	UserAgent    string        `mapstructure:"user_agent" validate:"required"`
	Probe        bool          `mapstructure:"probe"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" validate:"gt=0"`
}

type QueryConfig struct {
	AllowBlankNames bool `mapstructure:"allow_blank_names"`
}

type OutputConfig struct {
	// Bare output file names are created here.
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type MetricsConfig struct {
	// node_exporter textfile written at the end of a run; empty disables.
	Textfile string `mapstructure:"textfile"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	File        string  `mapstructure:"file"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

// New returns a viper instance with defaults, the optional config file
// search path and XRDS_* environment binding. Variables from a .env file in
// the working directory are loaded first.
func New() *viper.Viper {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "err", err)
	}

	v := viper.New()

	fence := domain.DefaultGeofence()

	// Defaults
	v.SetDefault("overpass.url", "http://localhost/api/interpreter")
	v.SetDefault("overpass.method", "GET")
	v.SetDefault("overpass.tries", 3)
	v.SetDefault("overpass.timeout", 60*time.Second)
	v.SetDefault("overpass.rate_per_sec", 1.0)
	v.SetDefault("overpass.user_agent", "xrds2gps/1.0")
	v.SetDefault("overpass.probe", true)
	v.SetDefault("overpass.probe_timeout", 5*time.Second)
	v.SetDefault("geofence.min_lon", fence.MinLon)
	v.SetDefault("geofence.max_lon", fence.MaxLon)
	v.SetDefault("geofence.min_lat", fence.MinLat)
	v.SetDefault("geofence.max_lat", fence.MaxLat)
	v.SetDefault("query.allow_blank_names", false)
	v.SetDefault("output.dir", defaultOutputDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.file", "")
	v.SetDefault("tracing.sample_ratio", 1.0)

	// Config file (optional)
	v.SetConfigName("xrds2gps")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "xrds2gps"))
	}

	// Environment variables: XRDS_OVERPASS_URL → overpass.url
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file if one is found, then unmarshals and
// validates the merged settings.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the geofence.
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config validation: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Sprintf("%s failed %q %s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}

	if !c.Geofence.IsValid() {
		errs = append(errs, fmt.Sprintf("geofence is empty: lon [%g, %g] lat [%g, %g]",
			c.Geofence.MinLon, c.Geofence.MaxLon, c.Geofence.MinLat, c.Geofence.MaxLat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "xrds2gps")
}
