package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`

	SupabaseURL            string `env:"SUPABASE_URL,required"`
	SupabasePublishableKey string `env:"SUPABASE_PUBLISHABLE_KEY,required"`

	R2Endpoint        string `env:"R2_ENDPOINT,required"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID,required"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY,required"`
	R2MediaBucket     string `env:"R2_MEDIA_BUCKET" envDefault:"event-media"`

	SignedURLTTLSeconds     int      `env:"SIGNED_URL_TTL_SECONDS" envDefault:"900"`
	OrganizerSessionTTLDays int      `env:"ORGANIZER_SESSION_TTL_DAYS" envDefault:"30"`
	CORSAllowedOrigins      []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	EnableEventStatusJob bool `env:"ENABLE_EVENT_STATUS_JOB" envDefault:"true"`
	EventOpenEarlyHours  int  `env:"EVENT_OPEN_EARLY_HOURS" envDefault:"13"`
	EventCloseLateHours  int  `env:"EVENT_CLOSE_LATE_HOURS" envDefault:"13"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SignedURLTTL() time.Duration {
	return time.Duration(c.SignedURLTTLSeconds) * time.Second
}

func (c *Config) OrganizerSessionTTL() time.Duration {
	return time.Duration(c.OrganizerSessionTTLDays) * 24 * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if _, err := url.Parse(c.SupabaseURL); err != nil {
		return fmt.Errorf("SUPABASE_URL is not a valid URL: %w", err)
	}

	if c.SignedURLTTLSeconds <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL_SECONDS must be positive")
	}
	if c.OrganizerSessionTTLDays <= 0 {
		return fmt.Errorf("ORGANIZER_SESSION_TTL_DAYS must be positive")
	}
	if c.EventOpenEarlyHours < 0 || c.EventCloseLateHours < 0 {
		return fmt.Errorf("event status buffers must not be negative")
	}

	if isProduction {
		if len(c.CORSAllowedOrigins) == 0 {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS must be set in production (cookie mutations would all fail the origin check)")
		}
		if !strings.HasPrefix(c.SupabaseURL, "https://") {
			log.Warn().Msg("SUPABASE_URL is not https in production")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
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
