// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the client
type Config struct {
	Gateway   GatewayConfig
	Analytics AnalyticsConfig
	Cache     CacheConfig
	Session   SessionConfig
	Logging   LoggingConfig
}

type GatewayConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AnalyticsConfig struct {
	// URL overrides the gateway URL for the analytics service; empty means
	// the analytics endpoints are reached through the gateway.
	URL          string        `mapstructure:"url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	OnlineWindow time.Duration `mapstructure:"online_window"`
}

type CacheConfig struct {
	DefaultStaleTime time.Duration `mapstructure:"default_stale_time"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
}

type SessionConfig struct {
	FilePath string `mapstructure:"file_path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	// Local .env takes effect before viper reads the environment
	_ = godotenv.Load()

	viper.SetEnvPrefix("SPROUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(defaultConfigDir())
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// AnalyticsURL returns the base URL for analytics requests.
func (c *Config) AnalyticsURL() string {
	if c.Analytics.URL != "" {
		return c.Analytics.URL
	}
	return c.Gateway.URL
}

func setDefaults() {
	// Gateway defaults
	viper.SetDefault("gateway.url", "http://localhost:8080")
	viper.SetDefault("gateway.timeout", "10s")

	// Analytics defaults
	viper.SetDefault("analytics.url", "")
	viper.SetDefault("analytics.poll_interval", "3s")
	viper.SetDefault("analytics.online_window", "5m")

	// Cache defaults
	viper.SetDefault("cache.default_stale_time", "5m")
	viper.SetDefault("cache.sweep_interval", "10m")

	// Session defaults
	viper.SetDefault("session.file_path", filepath.Join(defaultConfigDir(), "session.json"))

	// Logging defaults
	viper.SetDefault("logging.level", "info")
}

func validateConfig(config *Config) error {
	if config.Gateway.URL == "" {
		return fmt.Errorf("gateway url is required")
	}
	if config.Analytics.PollInterval <= 0 {
		return fmt.Errorf("analytics poll_interval must be positive")
	}
	if config.Cache.DefaultStaleTime <= 0 {
		return fmt.Errorf("cache default_stale_time must be positive")
	}
	if config.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep_interval must be positive")
	}
	if config.Session.FilePath == "" {
		return fmt.Errorf("session file_path is required")
	}
	return nil
}

func defaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "sprout")
}
