package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`

	// Gateway configuration
	Gateway GatewayConfig `mapstructure:"gateway"`

	// Network fetch configuration
	Fetch FetchConfig `mapstructure:"fetch"`

	// Key store configuration
	Keys KeyConfig `mapstructure:"keys"`

	// Host runtime capabilities
	Host HostConfig `mapstructure:"host"`
}

// GatewayConfig contains local gateway settings
type GatewayConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// FetchConfig contains outbound fetch settings
type FetchConfig struct {
	Timeout   time.Duration     `mapstructure:"timeout"`
	UserAgent string            `mapstructure:"user_agent"`
	Headers   map[string]string `mapstructure:"headers"`
}

// KeyConfig contains persistent key store settings
type KeyConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// HostConfig describes the playback host's completion-acknowledgment
// behavior
type HostConfig struct {
	RequiresResolvedSignal bool `mapstructure:"requires_resolved_signal"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Gateway.Addr == "" {
		return fmt.Errorf("gateway address is required")
	}

	if config.Gateway.RequestTimeout <= 0 {
		return fmt.Errorf("gateway request timeout must be positive")
	}

	if config.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}

	if config.Keys.DatabasePath == "" {
		return fmt.Errorf("key database path is required")
	}

	return nil
}
