// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	History    HistoryConfig    `mapstructure:"history"`
	Elasticity ElasticityConfig `mapstructure:"elasticity"`
	Optimizer  OptimizerConfig  `mapstructure:"optimizer"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Currencies CurrencyConfig   `mapstructure:"currencies"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// StorageConfig holds backing store connection settings.
type StorageConfig struct {
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	UseMemory     bool   `mapstructure:"use_memory"`
}

// HistoryConfig controls observation retention.
type HistoryConfig struct {
	RetentionDays      int           `mapstructure:"retention_days"`
	CompactionInterval time.Duration `mapstructure:"compaction_interval"`
}

// ElasticityConfig controls the estimator.
type ElasticityConfig struct {
	WindowDays          int           `mapstructure:"window_days"`
	MinSamples          int           `mapstructure:"min_samples"`
	MinPriceVariance    float64       `mapstructure:"min_price_variance"`
	FallbackCoefficient float64       `mapstructure:"fallback_coefficient"`
	RefreshInterval     time.Duration `mapstructure:"refresh_interval"`
}

// OptimizerConfig controls the guardrail optimizer search.
type OptimizerConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	SearchRadiusPct     float64 `mapstructure:"search_radius_pct"`
	SearchSteps         int     `mapstructure:"search_steps"`
}

// CacheConfig controls the recommendation cache and deduplication.
type CacheConfig struct {
	LeaseTimeout time.Duration `mapstructure:"lease_timeout"`
	RedisTTL     time.Duration `mapstructure:"redis_ttl"`
}

// CurrencyConfig holds the known currency set for ingestion validation.
type CurrencyConfig struct {
	Known []string `mapstructure:"known"`
}

// Load reads configuration from file and environment variables.
// path == "" loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PRICING_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("server.request_timeout", 10*time.Second)

	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.use_memory", false)

	v.SetDefault("history.retention_days", 180)
	v.SetDefault("history.compaction_interval", 1*time.Hour)

	v.SetDefault("elasticity.window_days", 90)
	v.SetDefault("elasticity.min_samples", 8)
	v.SetDefault("elasticity.min_price_variance", 1e-4)
	v.SetDefault("elasticity.fallback_coefficient", -1.2)
	v.SetDefault("elasticity.refresh_interval", 6*time.Hour)

	v.SetDefault("optimizer.confidence_threshold", 0.5)
	v.SetDefault("optimizer.search_radius_pct", 5.0)
	v.SetDefault("optimizer.search_steps", 21)

	v.SetDefault("cache.lease_timeout", 30*time.Second)
	v.SetDefault("cache.redis_ttl", 0*time.Second)

	v.SetDefault("currencies.known", []string{"USD", "EUR", "TRY", "RUB", "KZT", "UAH", "RON"})
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.History.RetentionDays <= 0 {
		return fmt.Errorf("history.retention_days must be positive, got %d", c.History.RetentionDays)
	}
	if c.Elasticity.WindowDays <= 0 {
		return fmt.Errorf("elasticity.window_days must be positive, got %d", c.Elasticity.WindowDays)
	}
	if c.Elasticity.MinSamples < 2 {
		return fmt.Errorf("elasticity.min_samples must be at least 2, got %d", c.Elasticity.MinSamples)
	}
	if c.Optimizer.SearchSteps < 3 {
		return fmt.Errorf("optimizer.search_steps must be at least 3, got %d", c.Optimizer.SearchSteps)
	}
	if len(c.Currencies.Known) == 0 {
		return fmt.Errorf("currencies.known must not be empty")
	}
	return nil
}
