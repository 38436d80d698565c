package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Mode selects which authentication collaborator the portal talks to.
const (
	ModeLocal  = "local"  // in-process directory backed by MongoDB
	ModeRemote = "remote" // external authentication service over HTTP
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// DeviceID namespaces the persisted session; one portal process serves
	// one kiosk or terminal.
	DeviceID string `env:"DEVICE_ID, default=default-device"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	Mode       string        `env:"AUTH_MODE,        default=local"`
	ServiceURL string        `env:"AUTH_SERVICE_URL, default=http://localhost:9000"`
	Timeout    time.Duration `env:"AUTH_TIMEOUT,     default=10s"`
	JWTSecret  string        `env:"JWT_SECRET,       default=dev-only-secret"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,        default=24h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=healthcare_portal"`
}

type RedisConfig struct {
	// Addr empty means the session is kept in process memory only.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Auth.Mode != ModeLocal && cfg.Auth.Mode != ModeRemote {
		return nil, fmt.Errorf("config: AUTH_MODE must be %q or %q, got %q", ModeLocal, ModeRemote, cfg.Auth.Mode)
	}
	return &cfg, nil
}
