// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/codr1/saf-wrapped/internal/stats"
)

type StatsConfig struct {
	TopN              int  `yaml:"top_n"`
	DensityStart      int  `yaml:"density_start"`
	DensityEnd        int  `yaml:"density_end"`
	BucketStep        int  `yaml:"bucket_step"`
	DedupeSharedWeeks bool `yaml:"dedupe_shared_weeks"`
}

type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Burst             int           `yaml:"burst"`
	IdleTTL           time.Duration `yaml:"idle_ttl"`
	SweepCron         string        `yaml:"sweep_cron"`
	TrustProxy        bool          `yaml:"trust_proxy"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
	} `yaml:"app"`

	Server struct {
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Upload struct {
		MaxBytes int64 `yaml:"max_bytes"`
	} `yaml:"upload"`

	Stats     StatsConfig     `yaml:"stats"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Default returns a configuration that runs without any file.
func Default() *Config {
	opts := stats.DefaultOptions()

	cfg := &Config{}
	cfg.App.Name = "SAF Wrapped"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.Upload.MaxBytes = 5 << 20
	cfg.Stats = StatsConfig{
		TopN:              opts.TopN,
		DensityStart:      opts.DensityStart,
		DensityEnd:        opts.DensityEnd,
		BucketStep:        opts.BucketStep,
		DedupeSharedWeeks: opts.DedupeSharedWeeks,
	}
	cfg.RateLimit = RateLimitConfig{
		RequestsPerMinute: 30,
		Burst:             10,
		IdleTTL:           15 * time.Minute,
		SweepCron:         "*/5 * * * *",
	}
	return cfg
}

// Load loads both .env and yaml configuration. Values missing from the file
// keep their defaults. An empty configPath skips the file entirely.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		// Load .env file if it exists
		envPath := filepath.Join(filepath.Dir(configPath), ".env")
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv lets the environment override deployment-specific values.
func (c *Config) applyEnv() error {
	if env := strings.TrimSpace(os.Getenv("WRAPPED_ENVIRONMENT")); env != "" {
		c.App.Environment = env
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.App.Port = p
	}
	return nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app port must be between 1 and 65535")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max_bytes must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown_timeout must be positive")
	}
	if err := c.StatsOptions().Validate(); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit requests_per_minute must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit burst must be positive")
	}
	if c.RateLimit.IdleTTL <= 0 {
		return fmt.Errorf("rate_limit idle_ttl must be positive")
	}
	if strings.TrimSpace(c.RateLimit.SweepCron) == "" {
		return fmt.Errorf("rate_limit sweep_cron is required")
	}
	return nil
}

// IsDevelopment reports whether console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// StatsOptions maps the stats section onto engine options.
func (c *Config) StatsOptions() stats.Options {
	return stats.Options{
		TopN:              c.Stats.TopN,
		DensityStart:      c.Stats.DensityStart,
		DensityEnd:        c.Stats.DensityEnd,
		BucketStep:        c.Stats.BucketStep,
		DedupeSharedWeeks: c.Stats.DedupeSharedWeeks,
	}
}
