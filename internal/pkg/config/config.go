package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	GraphQL GraphQLConfig
	Session SessionConfig
	Redis   RedisConfig
	Login   LoginConfig
}

type GraphQLConfig struct {
	URL     string        `env:"GRAPHQL_URL,     default=http://localhost:4000/graphql"`
	Timeout time.Duration `env:"GRAPHQL_TIMEOUT, default=10s"`
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	CookieName   string        `env:"SESSION_COOKIE_NAME,   default=inventory_console"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	TTL          time.Duration `env:"SESSION_TTL,           default=30m"`
	MaxBrowsers  int           `env:"SESSION_MAX_BROWSERS,  default=10000"`
	// TokenTTL is how long a stored token or profile is kept after it was
	// last read. Every request of a signed-in browser reads its token.
	TokenTTL time.Duration `env:"SESSION_TOKEN_TTL, default=168h"`
}

// RedisConfig selects the credential store. An empty Addr keeps tokens in
// process memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	Rate  float64 `env:"LOGIN_RATE,  default=0.5"`
	Burst int     `env:"LOGIN_BURST, default=5"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads a .env file when present, then configuration from environment
// variables using go-envconfig.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Parse builds a Config from lookuper and checks the settings that have no
// safe default outside development.
func Parse(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}

	if cfg.Session.Secret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("SESSION_SECRET is required when ENV=%s", cfg.Env)
		}
		cfg.Session.Secret = "development-only-session-secret"
	}
	if len(cfg.Session.Secret) < 16 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	return &cfg, nil
}
