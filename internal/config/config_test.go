package config

import (
	"testing"
	"time"
)

func devConfig() *Config {
	return &Config{
		Env:                    "development",
		Port:                   "8000",
		RedisURL:               "redis://localhost:6379",
		JourneyTTLMinutes:      60,
		PrePostSlotMinutes:     15,
		ConfirmAttempts:        3,
		ConfirmBackoffMS:       500,
		UpstreamTimeoutSeconds: 15,
	}
}

func TestValidate_DevDefaultsAreValid(t *testing.T) {
	cfg := devConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ProductionRequiresUpstreamURLs(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "secret"

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing upstream URLs")
	}

	cfg.BookingAPIURL = "http://booking"
	cfg.PrisonAPIURL = "http://prison"
	cfg.ActivitiesAPIURL = "http://activities"
	cfg.LocationsAPIURL = "http://locations"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_ProductionRequiresJWTSecret(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"
	cfg.BookingAPIURL = "http://booking"
	cfg.PrisonAPIURL = "http://prison"
	cfg.ActivitiesAPIURL = "http://activities"
	cfg.LocationsAPIURL = "http://locations"

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET")
	}
}

func TestValidate_RejectsNonPositiveKnobs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"journey ttl", func(c *Config) { c.JourneyTTLMinutes = 0 }},
		{"pre/post minutes", func(c *Config) { c.PrePostSlotMinutes = -1 }},
		{"confirm attempts", func(c *Config) { c.ConfirmAttempts = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := devConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := devConfig()
	if got := cfg.JourneyTTL(); got != time.Hour {
		t.Errorf("JourneyTTL = %v, want 1h", got)
	}
	if got := cfg.UpstreamTimeout(); got != 15*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 15s", got)
	}
	if got := cfg.ConfirmBackoff(); got != 500*time.Millisecond {
		t.Errorf("ConfirmBackoff = %v, want 500ms", got)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port == "" {
		t.Error("expected default port")
	}
	if cfg.PrePostSlotMinutes != 15 {
		t.Errorf("PrePostSlotMinutes = %d, want 15", cfg.PrePostSlotMinutes)
	}
	if cfg.ConfirmAttempts != 3 {
		t.Errorf("ConfirmAttempts = %d, want 3", cfg.ConfirmAttempts)
	}
}
