package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/fittrack/internal/cardio"
	"github.com/2beens/fittrack/internal/geo"
	"github.com/2beens/fittrack/internal/route"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

const EnvPrefix = "FITTRACK_"

type Config struct {
	Environment string `toml:"environment" env:"ENVIRONMENT, overwrite"`
	Host        string `toml:"host" env:"HOST, overwrite"`
	Port        int    `toml:"port" env:"PORT, overwrite"`
	MetricsPort int    `toml:"metrics_port" env:"METRICS_PORT, overwrite"`

	// logging
	LogLevel      string `toml:"log_level" env:"LOG_LEVEL, overwrite"`
	LogsPath      string `toml:"logs_path" env:"LOGS_PATH, overwrite"`
	LogToStdout   bool   `toml:"log_to_stdout" env:"LOG_TO_STDOUT, overwrite"`
	LogFormatJSON bool   `toml:"log_format_json" env:"LOG_FORMAT_JSON, overwrite"`
	SentryEnabled bool   `toml:"sentry_enabled" env:"SENTRY_ENABLED, overwrite"`
	SentryDSN     string `toml:"-" env:"SENTRY_DSN"`

	// storage: "postgres" or "memory"
	Storage          string `toml:"storage" env:"STORAGE, overwrite"`
	MigrateOnStart   bool   `toml:"migrate_on_start" env:"MIGRATE_ON_START, overwrite"`
	PostgresHost     string `toml:"postgres_host" env:"POSTGRES_HOST, overwrite"`
	PostgresPort     string `toml:"postgres_port" env:"POSTGRES_PORT, overwrite"`
	PostgresDBName   string `toml:"postgres_db_name" env:"POSTGRES_DB_NAME, overwrite"`
	PostgresUser     string `toml:"postgres_user" env:"POSTGRES_USER, overwrite"`
	PostgresPassword string `toml:"-" env:"POSTGRES_PASSWORD"`

	// best values cache: "redis" or "memory"
	BestCache     string `toml:"best_cache" env:"BEST_CACHE, overwrite"`
	RedisHost     string `toml:"redis_host" env:"REDIS_HOST, overwrite"`
	RedisPort     string `toml:"redis_port" env:"REDIS_PORT, overwrite"`
	RedisPassword string `toml:"-" env:"REDIS_PASSWORD"`

	// api
	APIToken         string   `toml:"-" env:"API_TOKEN"`
	AllowedOrigins   []string `toml:"allowed_origins" env:"ALLOWED_ORIGINS, overwrite"`
	SamplesPerMinute int      `toml:"samples_per_minute" env:"SAMPLES_PER_MINUTE, overwrite"`
	MaxBodyBytes     int64    `toml:"max_body_bytes" env:"MAX_BODY_BYTES, overwrite"`

	// derivation
	SplitUnit            string  `toml:"split_unit" env:"SPLIT_UNIT, overwrite"`
	BestEffortKm         float64 `toml:"best_effort_km" env:"BEST_EFFORT_KM, overwrite"`
	SkipMissingElevation bool    `toml:"skip_missing_elevation" env:"SKIP_MISSING_ELEVATION, overwrite"`

	HoneycombEnabled bool `toml:"honeycomb_enabled" env:"HONEYCOMB_ENABLED, overwrite"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] section in config", env)
	}
	return cfg, nil
}

// Load reads the TOML config for env and applies FITTRACK_* environment overrides.
func Load(ctx context.Context, env, path string) (*Config, error) {
	return LoadWithLookuper(ctx, env, path, envconfig.OsLookuper())
}

func LoadWithLookuper(ctx context.Context, env, path string, lookuper envconfig.Lookuper) (*Config, error) {
	var tomlCfg Toml
	if _, err := toml.DecodeFile(path, &tomlCfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := tomlCfg.Get(env)
	if err != nil {
		return nil, err
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
	}); err != nil {
		return nil, fmt.Errorf("process env overrides: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 9100
	}
	if c.MetricsPort == 0 {
		c.MetricsPort = 9101
	}
	if c.Storage == "" {
		c.Storage = "memory"
	}
	if c.BestCache == "" {
		c.BestCache = "memory"
	}
	if c.SplitUnit == "" {
		c.SplitUnit = "mi"
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 1 << 20
	}
}

func (c *Config) Validate() error {
	switch c.Storage {
	case "memory", "postgres":
	default:
		return fmt.Errorf("invalid storage: %s", c.Storage)
	}
	switch c.BestCache {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid best cache: %s", c.BestCache)
	}
	switch c.SplitUnit {
	case "mi", "km":
	default:
		return fmt.Errorf("invalid split unit: %s", c.SplitUnit)
	}
	if c.BestEffortKm < 0 {
		return fmt.Errorf("invalid best effort distance: %f", c.BestEffortKm)
	}
	return nil
}

// CardioOptions maps the derivation settings onto cardio.Options.
func (c *Config) CardioOptions() cardio.Options {
	opts := cardio.DefaultOptions()
	if c.SplitUnit == "km" {
		opts.SplitKm = 1
	} else {
		opts.SplitKm = geo.MilesToKm(1)
	}
	if c.BestEffortKm > 0 {
		opts.BestEffortKm = c.BestEffortKm
	}
	if c.SkipMissingElevation {
		opts.Elevation = route.SkipMissing
	}
	return opts
}
