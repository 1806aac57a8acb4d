package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Session  SessionConfig
	Upstream UpstreamConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AURELIA_APP_ENV" required:"true"`
	Port         string `envconfig:"AURELIA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AURELIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AURELIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"AURELIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AURELIA_REDIS_ADDR"`
	Password     string        `envconfig:"AURELIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"AURELIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AURELIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AURELIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AURELIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AURELIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AURELIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	TTLMinutes int `envconfig:"AURELIA_SESSION_TTL_MINUTES" default:"10080"`
}

// TTL returns the session lifetime configured in minutes.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// UpstreamConfig points the gateway at the external storefront services.
type UpstreamConfig struct {
	CatalogBaseURL string        `envconfig:"AURELIA_CATALOG_BASE_URL" required:"true"`
	CouponBaseURL  string        `envconfig:"AURELIA_COUPON_BASE_URL" required:"true"`
	OrderBaseURL   string        `envconfig:"AURELIA_ORDER_BASE_URL" required:"true"`
	AuthBaseURL    string        `envconfig:"AURELIA_AUTH_BASE_URL" required:"true"`
	Timeout        time.Duration `envconfig:"AURELIA_UPSTREAM_TIMEOUT" default:"10s"`
}

// CheckoutConfig bounds the double-submit window: an identical
// submission inside the TTL is rejected, after it the order can be
// placed again.
type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"AURELIA_CHECKOUT_IDEMPOTENCY_TTL" default:"2m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"AURELIA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
