package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	RedisURL string `mapstructure:"REDIS_URL"`

	// Upstream service base URLs.
	BookingAPIURL    string `mapstructure:"BOOKING_API_URL"`
	PrisonAPIURL     string `mapstructure:"PRISON_API_URL"`
	ActivitiesAPIURL string `mapstructure:"ACTIVITIES_API_URL"`
	LocationsAPIURL  string `mapstructure:"LOCATIONS_API_URL"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Journey/session behaviour
	JourneyTTLMinutes int `mapstructure:"JOURNEY_TTL_MINUTES"`

	// Pre/post hearing slot length in minutes when the user does not supply
	// explicit times.
	PrePostSlotMinutes int `mapstructure:"PRE_POST_SLOT_MINUTES"`

	// Bounded retry used when confirming a just-amended booking against the
	// eventually consistent appointment search index.
	ConfirmAttempts  int `mapstructure:"CONFIRM_ATTEMPTS"`
	ConfirmBackoffMS int `mapstructure:"CONFIRM_BACKOFF_MS"`

	UpstreamTimeoutSeconds int `mapstructure:"UPSTREAM_TIMEOUT_SECONDS"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("REDIS_URL", "redis://localhost:6379")
	v.SetDefault("JOURNEY_TTL_MINUTES", 60)
	v.SetDefault("PRE_POST_SLOT_MINUTES", 15)
	v.SetDefault("CONFIRM_ATTEMPTS", 3)
	v.SetDefault("CONFIRM_BACKOFF_MS", 500)
	v.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 15)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "REDIS_URL",
		"BOOKING_API_URL", "PRISON_API_URL", "ACTIVITIES_API_URL", "LOCATIONS_API_URL",
		"JWT_SECRET", "JOURNEY_TTL_MINUTES", "PRE_POST_SLOT_MINUTES",
		"CONFIRM_ATTEMPTS", "CONFIRM_BACKOFF_MS", "UPSTREAM_TIMEOUT_SECONDS",
		"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; all requests act as a fixed staff user.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// JourneyTTL returns the session journey time-to-live.
func (c *Config) JourneyTTL() time.Duration {
	return time.Duration(c.JourneyTTLMinutes) * time.Minute
}

// UpstreamTimeout returns the per-request deadline applied to upstream calls.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// ConfirmBackoff returns the fixed delay between appointment-search
// confirmation attempts.
func (c *Config) ConfirmBackoff() time.Duration {
	return time.Duration(c.ConfirmBackoffMS) * time.Millisecond
}

// Validate checks that the configuration is safe to run. Outside development
// every upstream base URL must be set and JWT_SECRET must be present so that
// real bearer-token authentication is enforced.
func (c *Config) Validate() error {
	if !c.IsDev() {
		for name, val := range map[string]string{
			"BOOKING_API_URL":    c.BookingAPIURL,
			"PRISON_API_URL":     c.PrisonAPIURL,
			"ACTIVITIES_API_URL": c.ActivitiesAPIURL,
			"LOCATIONS_API_URL":  c.LocationsAPIURL,
		} {
			if val == "" {
				return fmt.Errorf("%s is required when ENV=%q", name, c.Env)
			}
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
		}
	}
	if c.JourneyTTLMinutes <= 0 {
		return fmt.Errorf("JOURNEY_TTL_MINUTES must be positive, got %d", c.JourneyTTLMinutes)
	}
	if c.PrePostSlotMinutes <= 0 {
		return fmt.Errorf("PRE_POST_SLOT_MINUTES must be positive, got %d", c.PrePostSlotMinutes)
	}
	if c.ConfirmAttempts <= 0 {
		return fmt.Errorf("CONFIRM_ATTEMPTS must be positive, got %d", c.ConfirmAttempts)
	}
	return nil
}
