package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	StorageType string         `env:"STORAGE_TYPE" envDefault:"memory"`
	HTTP        HTTPConfig     `envPrefix:"HTTP_"`
	Postgres    PostgresConfig `envPrefix:"POSTGRES_"`
	Auth        AuthConfig     `envPrefix:"AUTH_"`
	Log         LogConfig      `envPrefix:"LOG_"`
}

type PostgresConfig struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	DB       string `env:"DB"`
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"5432"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

func (pc PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.User,
		pc.Password,
		pc.Host,
		pc.Port,
		pc.DB,
		pc.SSLMode,
	)
}

type HTTPConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// ClientConfig configures feedctl and any other process that talks to the
// server through the cached query client.
type ClientConfig struct {
	Endpoint       string        `env:"ENDPOINT" envDefault:"http://localhost:8080/query"`
	Token          string        `env:"TOKEN"`
	StaleTime      time.Duration `env:"STALE_TIME" envDefault:"1m"`
	Retry          int           `env:"RETRY" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"RETRY_DELAY" envDefault:"1s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	CacheSize      int           `env:"CACHE_SIZE" envDefault:"256"`
	Log            LogConfig     `envPrefix:"LOG_"`
}

// LoadConfig reads the server configuration from the environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

// LoadClientConfig reads FEED_* variables.
func LoadClientConfig() (ClientConfig, error) {
	return loadClientConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.HTTP.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: HTTP_SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
	}

	switch cfg.StorageType {
	case StorageMemory:
	case StoragePostgres:
		if cfg.Postgres.Host == "" || cfg.Postgres.User == "" || cfg.Postgres.DB == "" {
			return Config{}, fmt.Errorf("%w: POSTGRES_HOST, POSTGRES_USER and POSTGRES_DB are required for postgres storage", ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown STORAGE_TYPE %q", ErrInvalidConfig, cfg.StorageType)
	}
	return cfg, nil
}

func loadClientConfig(opts env.Options) (ClientConfig, error) {
	opts.Prefix = "FEED_"
	cfg, err := env.ParseAsWithOptions[ClientConfig](opts)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.CacheSize <= 0 {
		return ClientConfig{}, fmt.Errorf("%w: FEED_CACHE_SIZE must be positive", ErrInvalidConfig)
	}
	if cfg.Retry < 0 {
		return ClientConfig{}, fmt.Errorf("%w: FEED_RETRY must not be negative", ErrInvalidConfig)
	}
	if cfg.RequestTimeout <= 0 {
		return ClientConfig{}, fmt.Errorf("%w: FEED_REQUEST_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if cfg.RetryBaseDelay <= 0 {
		return ClientConfig{}, fmt.Errorf("%w: FEED_RETRY_DELAY must be positive", ErrInvalidConfig)
	}
	// zero is allowed: every read refetches
	if cfg.StaleTime < 0 {
		return ClientConfig{}, fmt.Errorf("%w: FEED_STALE_TIME must not be negative", ErrInvalidConfig)
	}
	return cfg, nil
}
