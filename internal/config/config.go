package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                    int    `env:"PORT" envDefault:"8080"`
	DatabaseURL             string `env:"DATABASE_URL,required"`
	RedisURL                string `env:"REDIS_URL,required"`
	CodeTTLHours            int    `env:"CODE_TTL_HOURS" envDefault:"24"`
	GenerateRateLimitPerMin int    `env:"GENERATE_RATE_LIMIT_PER_MIN" envDefault:"30"`
	LogLevel                string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv                  string `env:"APP_ENV" envDefault:"development"`
}

func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.CodeTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) Validate() error {
	if c.CodeTTLHours <= 0 {
		return fmt.Errorf("CODE_TTL_HOURS must be positive, got %d", c.CodeTTLHours)
	}
	if c.GenerateRateLimitPerMin <= 0 {
		return fmt.Errorf("GENERATE_RATE_LIMIT_PER_MIN must be positive, got %d", c.GenerateRateLimitPerMin)
	}

	if c.IsProduction() {
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if strings.Contains(c.DatabaseURL, "sslmode=disable") {
			log.Warn().Msg("DATABASE_URL has sslmode=disable in production")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
