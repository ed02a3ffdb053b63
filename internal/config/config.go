// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the admin dashboard configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Translation providers.
const (
	ProviderAuto    = "auto"
	ProviderBackend = "backend"
	ProviderLibre   = "libre"
	ProviderOpenAI  = "openai"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Backend REST API
	APIURL      string        `env:"SOLAR_API_URL,required"`
	HTTPTimeout time.Duration `env:"SOLAR_HTTP_TIMEOUT" envDefault:"20s"`

	// Translation assist
	TranslateAPI      string        `env:"SOLAR_TRANSLATE_API" envDefault:"translations/translate"`
	TranslateKey      string        `env:"SOLAR_TRANSLATE_KEY"`
	TranslateProvider string        `env:"SOLAR_TRANSLATE_PROVIDER" envDefault:"auto"`
	TranslateTimeout  time.Duration `env:"SOLAR_TRANSLATE_TIMEOUT" envDefault:"30s"`
	OpenAIAPIKey      string        `env:"SOLAR_OPENAI_API_KEY"`
	OpenAIModel       string        `env:"SOLAR_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// DevBypass fabricates an administrator session without a backend login.
	DevBypass bool `env:"SOLAR_DEV_BYPASS" envDefault:"false"`

	DBPath        string `env:"SOLAR_DB_PATH" envDefault:"./data/sessions.db"`
	SessionSecret string `env:"SOLAR_SESSION_SECRET,required"`
	ServerHost    string `env:"SOLAR_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"SOLAR_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"SOLAR_ENV" envDefault:"development"`
	LogLevel      string `env:"SOLAR_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL    string `env:"SOLAR_REDIS_URL"`                        // Optional Redis URL for the translation cache
	CachePrefix string `env:"SOLAR_CACHE_PREFIX" envDefault:"solar:"` // Redis key prefix
	CacheTTL    int    `env:"SOLAR_CACHE_TTL" envDefault:"86400"`     // Translation cache TTL in seconds

	// GeoLite2-Country database used to annotate sign-ins; empty disables it.
	GeoIPDBPath string `env:"SOLAR_GEOIP_DB_PATH"`

	// Login protection
	LoginRateLimit  float64       `env:"SOLAR_LOGIN_RATE" envDefault:"0.5"`
	LoginRateBurst  int           `env:"SOLAR_LOGIN_BURST" envDefault:"5"`
	LoginMaxFailure int           `env:"SOLAR_LOGIN_MAX_FAILURES" envDefault:"5"`
	LoginLockout    time.Duration `env:"SOLAR_LOGIN_LOCKOUT" envDefault:"15m"`
	RequestTimeout  time.Duration `env:"SOLAR_REQUEST_TIMEOUT" envDefault:"60s"`

	WorkflowTTL    time.Duration `env:"SOLAR_WORKFLOW_TTL" envDefault:"2h"`
	CoverMaxWidth  int           `env:"SOLAR_COVER_MAX_WIDTH" envDefault:"1600"`
	UploadMaxBytes int64         `env:"SOLAR_UPLOAD_MAX_BYTES" envDefault:"10485760"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// TranslateIsAbsolute reports whether the translate endpoint is a full URL
// rather than a path relative to the backend.
func (c Config) TranslateIsAbsolute() bool {
	return IsAbsoluteURL(c.TranslateAPI)
}

// ResolvedTranslateProvider returns the provider to use, resolving "auto"
// from the translate endpoint.
func (c Config) ResolvedTranslateProvider() string {
	switch c.TranslateProvider {
	case ProviderBackend, ProviderLibre, ProviderOpenAI:
		return c.TranslateProvider
	}
	if c.TranslateIsAbsolute() {
		return ProviderLibre
	}
	return ProviderBackend
}

// IsAbsoluteURL reports whether s is an http(s) URL with a host.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// ErrDevBypassInProduction is returned when the development bypass is enabled
// in a production environment.
var ErrDevBypassInProduction = errors.New("SOLAR_DEV_BYPASS must not be enabled when SOLAR_ENV=production")

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("SOLAR_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SOLAR_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("SOLAR_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !IsAbsoluteURL(c.APIURL) {
		return fmt.Errorf("SOLAR_API_URL must be an absolute http(s) URL, got %q", c.APIURL)
	}

	if c.DevBypass && c.IsProduction() {
		return ErrDevBypassInProduction
	}

	switch c.TranslateProvider {
	case ProviderAuto, ProviderBackend, ProviderLibre:
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("SOLAR_OPENAI_API_KEY is required when SOLAR_TRANSLATE_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown SOLAR_TRANSLATE_PROVIDER %q", c.TranslateProvider)
	}

	if c.TranslateProvider == ProviderLibre && !c.TranslateIsAbsolute() {
		return errors.New("SOLAR_TRANSLATE_API must be an absolute URL when SOLAR_TRANSLATE_PROVIDER=libre")
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
