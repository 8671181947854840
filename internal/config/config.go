package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// NWS upstream.
	NWSBaseURL   string
	NWSUserAgent string
	NWSTimeout   time.Duration

	// OpenRouter geocoding. Enabled when an API key is present.
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	OpenRouterTimeout time.Duration
	GeocodeCacheSize  int

	// Result cache.
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Optional Kafka alert publishing. Enabled when brokers are set.
	KafkaBrokers    []string
	KafkaAlertTopic string

	CORSAllowedOrigins []string
}

// GeocodeEnabled reports whether city-name resolution is configured.
func (c *Config) GeocodeEnabled() bool {
	return c.OpenRouterAPIKey != ""
}

// PublishEnabled reports whether the Kafka alert publisher is configured.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	nwsTimeout, err := envDuration("NWS_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	openRouterTimeout, err := envDuration("OPENROUTER_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := envDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	geocodeCacheSize, err := envInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	cacheMaxEntries, err := envInt("CACHE_MAX_ENTRIES", 1024)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NWSBaseURL:   strings.TrimRight(envOrDefault("NWS_BASE_URL", "https://api.weather.gov"), "/"),
		NWSUserAgent: envOrDefault("NWS_USER_AGENT", "weather-dashboard/1.0"),
		NWSTimeout:   nwsTimeout,

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   envOrDefault("OPENROUTER_MODEL", "openai/gpt-oss-20b:free"),
		OpenRouterBaseURL: strings.TrimRight(envOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
		OpenRouterTimeout: openRouterTimeout,
		GeocodeCacheSize:  geocodeCacheSize,

		CacheTTL:        cacheTTL,
		CacheMaxEntries: cacheMaxEntries,

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertTopic: envOrDefault("KAFKA_ALERTS_TOPIC", "weather-alerts"),

		CORSAllowedOrigins: splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.NWSBaseURL == "" {
		return nil, errors.New("NWS_BASE_URL is required")
	}
	if cfg.PublishEnabled() && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_ALERTS_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

// splitList parses a comma-separated env value, trimming blanks.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
