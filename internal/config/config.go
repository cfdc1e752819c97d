package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	AuditStoreMemory = "memory"
	AuditStoreRedis  = "redis"
)

type Config struct {
	LogLevel   string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"24h"`
	Audit      Audit         `yaml:"audit"`
	Redis      Redis         `yaml:"redis"`
}

type Audit struct {
	Store     string `yaml:"store" env:"AUDIT_STORE" env-default:"memory"`
	MaxEvents int    `yaml:"max-events" env:"AUDIT_MAX_EVENTS" env-default:"500"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file, with environment overrides.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Audit.Store {
	case AuditStoreMemory, AuditStoreRedis:
	default:
		return fmt.Errorf("%w: audit store %q", ErrInvalidConfig, that.Audit.Store)
	}

	if that.Audit.MaxEvents < 0 {
		return fmt.Errorf("%w: audit max-events must not be negative", ErrInvalidConfig)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
