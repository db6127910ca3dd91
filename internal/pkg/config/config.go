package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ServerConfig configures `tastetrail serve`.
type ServerConfig struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=168h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,  default=tastetrail"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR, default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,   default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT, default=5s"`
}

// Development reports whether the server runs with development defaults.
func (c *ServerConfig) Development() bool {
	return c.Env == "development"
}

// ClientConfig configures the client commands. Flags override it.
type ClientConfig struct {
	APIURL      string        `env:"TASTETRAIL_API_URL, default=http://localhost:8080"`
	SessionFile string        `env:"TASTETRAIL_SESSION_FILE"`
	Timeout     time.Duration `env:"TASTETRAIL_TIMEOUT, default=15s"`
	LogLevel    string        `env:"TASTETRAIL_LOG_LEVEL, default=warn"`
}

// LoadServer reads the server configuration from the environment.
func LoadServer(ctx context.Context) (*ServerConfig, error) {
	return LoadServerWith(ctx, envconfig.OsLookuper())
}

// LoadServerWith reads the server configuration from l.
func LoadServerWith(ctx context.Context, l envconfig.Lookuper) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := process(ctx, &cfg, l); err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return &cfg, nil
}

// LoadClient reads the client configuration from the environment.
func LoadClient(ctx context.Context) (*ClientConfig, error) {
	return LoadClientWith(ctx, envconfig.OsLookuper())
}

// LoadClientWith reads the client configuration from l.
func LoadClientWith(ctx context.Context, l envconfig.Lookuper) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := process(ctx, &cfg, l); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func process(ctx context.Context, target any, l envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: target, Lookuper: l}); err != nil {
		return fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return nil
}
