package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	IntelipostBaseURL string
	IntelipostAPIKey  string
	IntelipostTimeout time.Duration

	QuoteCacheTTL     time.Duration
	FreeShippingTTL   time.Duration
	RemoveStaleQuotes bool

	RateLimitWindow time.Duration
	RateLimitMax    int

	MigrationsPath string

	// Carrier is the flat-key carrier configuration consumed per quote
	// request (keys: active, title, source_zip, height_attribute, ...).
	Carrier map[string]string
}

// carrierKeys enumerates the flat carrier configuration keys sourced from
// CARRIER_* environment variables.
var carrierKeys = []string{
	"active",
	"code",
	"title",
	"source_zip",
	"height_attribute",
	"width_attribute",
	"length_attribute",
	"use_category_attribute",
	"weight_unit",
	"weight_contingency",
	"height_contingency",
	"width_contingency",
	"length_contingency",
	"price_config",
	"value_on_zero",
	"break_on_error",
	"estimate_delivery_date",
	"calendar_only_checkout",
	"specificerrmsg",
	"riskareamsg",
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	carrier := make(map[string]string, len(carrierKeys))
	for _, key := range carrierKeys {
		carrier[key] = strings.TrimSpace(k.String("CARRIER_" + strings.ToUpper(key)))
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		IntelipostBaseURL: valueOrDefault(k.String("INTELIPOST_BASE_URL"), "https://api.intelipost.com.br/api/v1"),
		IntelipostAPIKey:  k.String("INTELIPOST_API_KEY"),
		IntelipostTimeout: parseDuration(k.String("INTELIPOST_TIMEOUT"), "10s"),

		QuoteCacheTTL:     parseDuration(k.String("QUOTE_CACHE_TTL"), "2m"),
		FreeShippingTTL:   parseDuration(k.String("FREE_SHIPPING_TTL"), "30m"),
		RemoveStaleQuotes: parseBool(valueOrDefault(k.String("QUOTE_REMOVE_STALE"), "true")),

		RateLimitWindow: parseDuration(k.String("QUOTE_RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:    parseInt(k.String("QUOTE_RATE_LIMIT_MAX"), 60),

		MigrationsPath: valueOrDefault(k.String("MIGRATIONS_PATH"), "db/migrations"),

		Carrier: carrier,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.IntelipostAPIKey == "" {
		return nil, errors.New("INTELIPOST_API_KEY is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return parsed
}

// LoadForTests allows tests to override environment variables without
// touching the real environment.
func LoadForTests(envs map[string]string) (*Config, error) {
	original := make(map[string]string, len(envs))
	for key := range envs {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, envs[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
