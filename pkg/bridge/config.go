package bridge

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// Version of this client, sent in the User-Agent header
	Version = "0.4.0"

	SandboxBaseURL    = "https://api.sandbox.bridge.xyz/v0"
	ProductionBaseURL = "https://api.bridge.xyz/v0"

	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	// NoRetries disables 429 retries when set as Config.MaxRetries
	NoRetries        = -1
	DefaultUserAgent = "bridge-sdk-go/" + Version
)

// Config represents Bridge API configuration
type Config struct {
	APIKey      string `validate:"required"`
	SandboxMode bool
	BaseURL     string        `validate:"omitempty,url"`
	Timeout     time.Duration `validate:"gte=0"`
	// MaxRetries bounds resubmissions after a 429; zero means
	// DefaultMaxRetries and NoRetries turns them off
	MaxRetries int `validate:"gte=-1,lte=10"`
	UserAgent  string
	// RequestsPerSecond enables client-side pacing when positive
	RequestsPerSecond float64 `validate:"gte=0"`
	CircuitBreaker    CircuitBreakerConfig
}

// CircuitBreakerConfig controls the breaker guarding the transport
type CircuitBreakerConfig struct {
	Enabled             bool
	ConsecutiveFailures uint32        `validate:"gte=0"`
	OpenTimeout         time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Validate checks the configuration
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid bridge config: %w", err)
	}
	return nil
}

// ResolvedBaseURL returns the explicit base URL or the one selected by SandboxMode
func (c Config) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.SandboxMode {
		return SandboxBaseURL
	}
	return ProductionBaseURL
}

func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	switch {
	case c.MaxRetries == 0:
		c.MaxRetries = DefaultMaxRetries
	case c.MaxRetries < 0:
		c.MaxRetries = 0
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.CircuitBreaker.ConsecutiveFailures == 0 {
		c.CircuitBreaker.ConsecutiveFailures = 5
	}
	if c.CircuitBreaker.OpenTimeout == 0 {
		c.CircuitBreaker.OpenTimeout = 30 * time.Second
	}
	c.BaseURL = c.ResolvedBaseURL()
	return c
}

var defaultConfig atomic.Pointer[Config]

// SetDefaultConfig stores the process-wide configuration used by NewDefaultClient.
// Only entry points should call it; library code never reads it implicitly.
func SetDefaultConfig(cfg Config) {
	defaultConfig.Store(&cfg)
}

// DefaultConfig returns the process-wide configuration, or the zero Config
func DefaultConfig() Config {
	if cfg := defaultConfig.Load(); cfg != nil {
		return *cfg
	}
	return Config{}
}
