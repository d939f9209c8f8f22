package config

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/soremed/portal/internal/core/domain"
)

// Credential store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Login   LoginConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL, default=http://localhost:8081/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT,  default=10s"`
}

type SessionConfig struct {
	Scheme        string        `env:"CREDENTIAL_SCHEME,    default=basic"`
	Store         string        `env:"CREDENTIAL_STORE,     default=memory"`
	Key           string        `env:"CREDENTIAL_KEY"`
	CookieName    string        `env:"SESSION_COOKIE_NAME,  default=soremed_session"`
	TTL           time.Duration `env:"SESSION_TTL,          default=12h"`
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL,     default=30m"`
	HydrationWait time.Duration `env:"GUARD_HYDRATION_WAIT, default=2s"`
}

type LoginConfig struct {
	RatePerSec float64 `env:"LOGIN_RATE_PER_SEC, default=1"`
	Burst      int     `env:"LOGIN_BURST,        default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=soremed_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Scheme {
	case domain.SchemeBasic, domain.SchemeBearer:
	default:
		return fmt.Errorf("CREDENTIAL_SCHEME must be %q or %q, got %q", domain.SchemeBasic, domain.SchemeBearer, c.Session.Scheme)
	}

	switch c.Session.Store {
	case StoreMemory, StoreRedis, StoreMongo:
	default:
		return fmt.Errorf("CREDENTIAL_STORE must be one of memory, redis, mongo, got %q", c.Session.Store)
	}

	if c.Session.Key != "" {
		if b, err := hex.DecodeString(c.Session.Key); err != nil || len(b) != 32 {
			return fmt.Errorf("CREDENTIAL_KEY must be 64 hex characters")
		}
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if c.Login.RatePerSec <= 0 || c.Login.Burst <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_SEC and LOGIN_BURST must be positive")
	}
	return nil
}
