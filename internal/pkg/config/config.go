package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	BaseURL string        `env:"API_BASE_URL,    default=http://localhost:8000"`
	Timeout time.Duration `env:"REQUEST_TIMEOUT, default=8s"`
}

type SessionConfig struct {
	KeyPrefix string        `env:"SESSION_KEY_PREFIX, default=gs"`
	TTL       time.Duration `env:"SESSION_TTL,        default=24h"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Pretty reports whether logs should be written for a human reader.
func (c *Config) Pretty() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.Backend.Timeout <= 0 {
		return nil, fmt.Errorf("config: REQUEST_TIMEOUT must be positive, got %s", cfg.Backend.Timeout)
	}
	return &cfg, nil
}

// MustLoad is Load for process start-up; it panics on invalid configuration.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
