package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rail-service/bridge_sdk/pkg/bridge"
	"github.com/rail-service/bridge_sdk/pkg/tracing"
)

// Config holds all configuration for bridgectl
type Config struct {
	Environment string        `mapstructure:"environment" validate:"required,oneof=development staging production test"`
	LogLevel    string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Bridge      BridgeConfig  `mapstructure:"bridge"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// BridgeConfig contains Bridge API configuration
type BridgeConfig struct {
	APIKey            string               `mapstructure:"api_key" validate:"required"`
	SandboxMode       bool                 `mapstructure:"sandbox_mode"`
	BaseURL           string               `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout           int                  `mapstructure:"timeout" validate:"gte=0"` // seconds
	MaxRetries        int                  `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RequestsPerSecond float64              `mapstructure:"requests_per_second" validate:"gte=0"`
	UserAgent         string               `mapstructure:"user_agent"`
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig controls the breaker around Bridge calls
type CircuitBreakerConfig struct {
	Enabled             bool `mapstructure:"enabled"`
	ConsecutiveFailures int  `mapstructure:"consecutive_failures" validate:"gte=0"`
	OpenTimeout         int  `mapstructure:"open_timeout" validate:"gte=0"` // seconds
}

// TracingConfig contains OpenTelemetry exporter settings
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	CollectorURL string  `mapstructure:"collector_url" validate:"required_if=Enabled true"`
	SampleRate   float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Insecure     bool    `mapstructure:"insecure"`
}

// ErrMissingAPIKey is returned when no Bridge API key was configured
var ErrMissingAPIKey = errors.New("bridge API key is required (set BRIDGE_API_KEY)")

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("./configs", ".")
}

// LoadFrom is Load with explicit search paths for config.yaml
func LoadFrom(paths ...string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	// Bridge defaults
	v.SetDefault("bridge.sandbox_mode", true)
	v.SetDefault("bridge.timeout", 30)
	v.SetDefault("bridge.max_retries", bridge.DefaultMaxRetries)
	v.SetDefault("bridge.requests_per_second", 0)
	v.SetDefault("bridge.user_agent", "bridgectl/"+bridge.Version)
	v.SetDefault("bridge.circuit_breaker.enabled", false)
	v.SetDefault("bridge.circuit_breaker.consecutive_failures", 5)
	v.SetDefault("bridge.circuit_breaker.open_timeout", 30)

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_url", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 0.1)
	v.SetDefault("tracing.insecure", false)
}

func overrideFromEnv(v *viper.Viper) {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		v.Set("environment", env)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		v.Set("log_level", strings.ToLower(level))
	}

	// Bridge API
	if apiKey := os.Getenv("BRIDGE_API_KEY"); apiKey != "" {
		v.Set("bridge.api_key", apiKey)
	}
	if baseURL := os.Getenv("BRIDGE_BASE_URL"); baseURL != "" {
		v.Set("bridge.base_url", baseURL)
	}
	if sandbox := os.Getenv("BRIDGE_SANDBOX_MODE"); sandbox != "" {
		if b, err := strconv.ParseBool(sandbox); err == nil {
			v.Set("bridge.sandbox_mode", b)
		}
	}
	if timeout := os.Getenv("BRIDGE_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			v.Set("bridge.timeout", t)
		}
	}
	if retries := os.Getenv("BRIDGE_MAX_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			v.Set("bridge.max_retries", r)
		}
	}

	// OpenTelemetry
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		v.Set("tracing.collector_url", endpoint)
		v.Set("tracing.enabled", true)
	}
}

var validatorInstance = validator.New()

func validate(config *Config) error {
	if strings.TrimSpace(config.Bridge.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return validatorInstance.Struct(config)
}

// BridgeClientConfig converts the loaded settings into a client configuration
func (c *Config) BridgeClientConfig() bridge.Config {
	// The loader defaults max_retries to 3, so a configured 0 is explicit.
	maxRetries := c.Bridge.MaxRetries
	if maxRetries == 0 {
		maxRetries = bridge.NoRetries
	}
	return bridge.Config{
		APIKey:            c.Bridge.APIKey,
		SandboxMode:       c.Bridge.SandboxMode,
		BaseURL:           c.Bridge.BaseURL,
		Timeout:           time.Duration(c.Bridge.Timeout) * time.Second,
		MaxRetries:        maxRetries,
		UserAgent:         c.Bridge.UserAgent,
		RequestsPerSecond: c.Bridge.RequestsPerSecond,
		CircuitBreaker: bridge.CircuitBreakerConfig{
			Enabled:             c.Bridge.CircuitBreaker.Enabled,
			ConsecutiveFailures: uint32(c.Bridge.CircuitBreaker.ConsecutiveFailures),
			OpenTimeout:         time.Duration(c.Bridge.CircuitBreaker.OpenTimeout) * time.Second,
		},
	}
}

// TracerConfig converts the tracing section for pkg/tracing
func (c *Config) TracerConfig() tracing.Config {
	return tracing.Config{
		Enabled:      c.Tracing.Enabled,
		CollectorURL: c.Tracing.CollectorURL,
		Environment:  c.Environment,
		SampleRate:   c.Tracing.SampleRate,
		Insecure:     c.Tracing.Insecure,
	}
}

// IsProduction reports whether the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
