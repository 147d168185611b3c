package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const Prefix = "STOREFRONT"

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:5000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	CircuitBreaker bool          `envconfig:"CIRCUIT_BREAKER" default:"false"`

	StoreBackend   string `envconfig:"STORE_BACKEND" default:"memory"`
	StoreNamespace string `envconfig:"STORE_NAMESPACE" default:"storefront"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD" default:""`
	PostgresDSN    string `envconfig:"POSTGRES_DSN" default:""`

	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	CounterRefresh time.Duration `envconfig:"COUNTER_REFRESH" default:"2s"`
}

// Load reads the given dotenv files (a missing file is not an error) and then
// the STOREFRONT_* environment. Variables already set win over dotenv values.
func Load(dotenvFiles ...string) (*Config, error) {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("godotenv.Load[%s]: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("envconfig.Process: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres dsn is empty")
		}
	default:
		return fmt.Errorf("store backend[%s] is not one of memory, redis, postgres", c.StoreBackend)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout[%s] is not positive", c.RequestTimeout)
	}
	if c.CounterRefresh <= 0 {
		return fmt.Errorf("counter refresh[%s] is not positive", c.CounterRefresh)
	}

	return nil
}
