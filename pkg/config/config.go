package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Seed configuration
	Seed SeedConfig `yaml:"seed"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`

	// Janitor configuration
	Janitor JanitorConfig `yaml:"janitor"`

	// Dashboard configuration
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// SeedConfig points at an optional YAML fixture file applied at startup
type SeedConfig struct {
	Path string `yaml:"path"`
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// JanitorConfig holds the maintenance schedule
type JanitorConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// DashboardConfig holds dashboard cache settings
type DashboardConfig struct {
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// LoadConfig loads configuration from the environment. When
// LATTICE_CONFIG_FILE is set, the YAML file is loaded first and the
// environment overrides it.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("LATTICE_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
		Janitor: JanitorConfig{
			Enabled:  true,
			Schedule: "@every 1m",
		},
		Dashboard: DashboardConfig{
			CacheSize: 128,
			CacheTTL:  30 * time.Second,
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Seed.Path = getEnv("LATTICE_SEED_PATH", c.Seed.Path)
	c.Observability.LogLevel = getEnv("LATTICE_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.MetricsEnabled = getEnvBool("LATTICE_METRICS_ENABLED", c.Observability.MetricsEnabled)
	c.Janitor.Enabled = getEnvBool("LATTICE_JANITOR_ENABLED", c.Janitor.Enabled)
	c.Janitor.Schedule = getEnv("LATTICE_JANITOR_SCHEDULE", c.Janitor.Schedule)
	c.Dashboard.CacheSize = getEnvInt("LATTICE_DASHBOARD_CACHE_SIZE", c.Dashboard.CacheSize)
	c.Dashboard.CacheTTL = getEnvDuration("LATTICE_DASHBOARD_CACHE_TTL", c.Dashboard.CacheTTL)
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Observability.LogLevel)
	}
	if c.Dashboard.CacheSize <= 0 {
		return fmt.Errorf("dashboard cache size must be positive, got %d", c.Dashboard.CacheSize)
	}
	if c.Dashboard.CacheTTL <= 0 {
		return fmt.Errorf("dashboard cache ttl must be positive, got %s", c.Dashboard.CacheTTL)
	}
	if c.Janitor.Enabled && c.Janitor.Schedule == "" {
		return fmt.Errorf("janitor schedule is required when the janitor is enabled")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
