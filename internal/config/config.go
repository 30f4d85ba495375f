// Package config provides configuration management for the service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig   `mapstructure:"server"`
	Provider    ProviderConfig `mapstructure:"provider"`
	Market      MarketConfig   `mapstructure:"market"`
	Stream      StreamConfig   `mapstructure:"stream"`
	Advisor     AdvisorConfig  `mapstructure:"advisor"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Credentials Credentials    `mapstructure:"-"` // env only
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// ProviderConfig holds market data provider configuration.
type ProviderConfig struct {
	// Kind selects the primary provider: "kite" or "mock".
	Kind            string        `mapstructure:"kind"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	MockSeed        int64         `mapstructure:"mock_seed"`
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// MarketConfig holds market convention parameters used by the analytics.
type MarketConfig struct {
	TradingDays  int     `mapstructure:"trading_days"`   // annualization basis
	RiskFreeRate float64 `mapstructure:"risk_free_rate"` // decimal, e.g. 0.045
}

// StreamConfig holds tick streaming configuration.
type StreamConfig struct {
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	BufferSize           int           `mapstructure:"buffer_size"`
	SubscriberBufferSize int           `mapstructure:"subscriber_buffer_size"`
}

// AdvisorConfig holds the optional LLM commentary configuration.
type AdvisorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
	Path    string `mapstructure:"path"`
}

// Credentials holds API credentials. These are never read from the config
// file, only from the environment.
type Credentials struct {
	KiteAPIKey      string
	KiteAccessToken string
	OpenAIAPIKey    string
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stockdeck"
	}
	return filepath.Join(home, ".config", "stockdeck")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		// Missing config file is fine, defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("provider.kind", "mock")
	v.SetDefault("provider.timeout", 5*time.Second)
	v.SetDefault("provider.retry_attempts", 2)
	v.SetDefault("provider.mock_seed", 0)
	v.SetDefault("provider.breaker_failures", 5)
	v.SetDefault("provider.breaker_cooldown", 30*time.Second)

	v.SetDefault("market.trading_days", 252)
	v.SetDefault("market.risk_free_rate", 0.045)

	v.SetDefault("stream.poll_interval", 3*time.Second)
	v.SetDefault("stream.buffer_size", 1000)
	v.SetDefault("stream.subscriber_buffer_size", 100)

	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.model", "gpt-4o-mini")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		cfg.Credentials.KiteAPIKey = v
	}
	if v := os.Getenv("KITE_ACCESS_TOKEN"); v != "" {
		cfg.Credentials.KiteAccessToken = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAIAPIKey = v
	}
	if v := os.Getenv("STOCKDECK_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STOCKDECK_PROVIDER"); v != "" {
		cfg.Provider.Kind = v
	}
	if v := os.Getenv("STOCKDECK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Provider.Kind != "kite" && c.Provider.Kind != "mock" {
		return fmt.Errorf("invalid provider kind: %s (must be 'kite' or 'mock')", c.Provider.Kind)
	}
	if c.Provider.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts must be non-negative")
	}
	if c.Market.TradingDays <= 0 {
		return fmt.Errorf("trading_days must be positive")
	}
	if c.Stream.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	return nil
}

// UsesMockPrimary returns true if the mock provider is the primary source.
func (c *Config) UsesMockPrimary() bool {
	return c.Provider.Kind == "mock"
}
