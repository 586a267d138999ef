package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:         "postgres://localhost/costos",
		Environment:         "development",
		MaxBodyBytes:        1048576,
		RateLimitPerMinute:  60,
		ExchangeRateURL:     "https://www.bna.com.ar/",
		ExchangeRateTimeout: 15 * time.Second,
		PasswordResetTTL:    2 * time.Hour,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "small body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimitPerMinute = 0 }, wantErr: true},
		{name: "relative rate url", mutate: func(c *Config) { c.ExchangeRateURL = "bna.com.ar" }, wantErr: true},
		{name: "zero fetch timeout", mutate: func(c *Config) { c.ExchangeRateTimeout = 0 }, wantErr: true},
		{name: "email without host", mutate: func(c *Config) { c.EmailEnabled = true }, wantErr: true},
		{name: "zero reset ttl", mutate: func(c *Config) { c.PasswordResetTTL = 0 }, wantErr: true},
		{
			name: "production without secrets",
			mutate: func(c *Config) {
				c.Environment = "production"
			},
			wantErr: true,
		},
		{
			name: "production with secrets",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = "secret"
				c.DataEncryptionKey = "key"
				c.RunSeed = false
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("EXCHANGE_RATE_TIMEOUT", "3s")
	cfg := Load()
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("expected fallback rate limit 60, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.ExchangeRateTimeout != 3*time.Second {
		t.Fatalf("expected timeout 3s, got %s", cfg.ExchangeRateTimeout)
	}
	if cfg.MigrationsDir != "migrations" {
		t.Fatalf("expected default migrations dir, got %q", cfg.MigrationsDir)
	}
}
