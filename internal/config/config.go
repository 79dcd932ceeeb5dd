package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/EcommerceGo/storefront/pkg/config"
)

// Identity provider kinds.
const (
	IdentityGoTrue = "gotrue"
	IdentityMemory = "memory"
)

// Token store kinds.
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// DefaultDevIdentitySecret signs tokens of the in-memory identity provider
// outside production.
const DefaultDevIdentitySecret = "storefront-dev-secret-change-me"

// Config holds all configuration for the storefront. It is resolved once
// at startup and passed by pointer.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"SHELL_HTTP_PORT" envDefault:"3000"`

	// Backend
	APIURL         string        `env:"API_URL" envDefault:"http://localhost:5000/api"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`

	// Identity provider
	IdentityProvider  string        `env:"IDENTITY_PROVIDER" envDefault:"memory"`
	IdentityURL       string        `env:"IDENTITY_URL"`
	IdentityPublicKey string        `env:"IDENTITY_PUBLIC_KEY"`
	DevIdentitySecret string        `env:"DEV_IDENTITY_SECRET" envDefault:"storefront-dev-secret-change-me"`
	DevIdentityTTL    time.Duration `env:"DEV_IDENTITY_TTL" envDefault:"1h"`
	DevAccountEmail   string        `env:"DEV_ACCOUNT_EMAIL"`
	DevAccountPass    string        `env:"DEV_ACCOUNT_PASSWORD"`

	// Object storage upload preset, passed through to the image uploader.
	UploadPreset string `env:"UPLOAD_PRESET"`

	// Session token persistence
	TokenStore    string        `env:"TOKEN_STORE" envDefault:"memory"`
	TokenKey      string        `env:"TOKEN_KEY" envDefault:"token"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"0s"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`

	// Circuit breaker around backend calls
	BreakerEnabled      bool          `env:"BREAKER_ENABLED" envDefault:"false"`
	BreakerMaxRequests  uint32        `env:"BREAKER_MAX_REQUESTS" envDefault:"3"`
	BreakerInterval     time.Duration `env:"BREAKER_INTERVAL" envDefault:"10s"`
	BreakerTimeout      time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.6"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Sign-in throttle
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginBurst         int `env:"LOGIN_BURST" envDefault:"5"`

	// Key sign-in limits on proxy headers; only behind a proxy that sets them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// OpenTelemetry
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the storefront runs in development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the storefront runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	var errs []error

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_URL must be an absolute http(s) URL, got %q", c.APIURL))
	}
	if c.GatewayTimeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_TIMEOUT must be positive"))
	}

	switch c.IdentityProvider {
	case IdentityGoTrue:
		if c.IdentityURL == "" || c.IdentityPublicKey == "" {
			errs = append(errs, errors.New("IDENTITY_URL and IDENTITY_PUBLIC_KEY are required for the gotrue provider"))
		}
	case IdentityMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("the memory identity provider cannot be used in production"))
		}
		if !c.IsDevelopment() && c.DevIdentitySecret == DefaultDevIdentitySecret {
			errs = append(errs, fmt.Errorf("DEV_IDENTITY_SECRET must be changed from default value in %s environment", c.Environment))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_PROVIDER must be %q or %q, got %q", IdentityGoTrue, IdentityMemory, c.IdentityProvider))
	}

	switch c.TokenStore {
	case TokenStoreMemory:
	case TokenStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis token store"))
		}
	default:
		errs = append(errs, fmt.Errorf("TOKEN_STORE must be %q or %q, got %q", TokenStoreMemory, TokenStoreRedis, c.TokenStore))
	}

	if c.LoginRatePerMinute <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE must be positive"))
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		errs = append(errs, errors.New("BREAKER_FAILURE_RATIO must be in (0, 1]"))
	}

	return errors.Join(errs...)
}
