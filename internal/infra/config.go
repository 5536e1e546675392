package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	GeoIPDBPath string

	// WebhookBaseURL is the public base under which the generation webhook
	// receiver is reachable; providers call back into it.
	WebhookBaseURL string

	FalAPIKey       string
	ReplicateAPIKey string
	LumaAPIKey      string
	RunwayAPIKey    string
	ArkAPIKey       string
	WavespeedAPIKey string
	KieAPIKey       string
	KusaAPIKey      string

	ProviderSubmitTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	DefaultLocale  string
	AllowedOrigins []string

	DBMaxConns int32
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		GeoIPDBPath:           os.Getenv("GEOIP_DB_PATH"),
		WebhookBaseURL:        getEnv("GENERATION_WEBHOOK_BASE_URL", "http://localhost:8080"),
		FalAPIKey:             os.Getenv("FAL_API_KEY"),
		ReplicateAPIKey:       os.Getenv("REPLICATE_API_TOKEN"),
		LumaAPIKey:            os.Getenv("LUMAAI_API_KEY"),
		RunwayAPIKey:          os.Getenv("RUNWAY_API_KEY"),
		ArkAPIKey:             os.Getenv("ARK_API_KEY"),
		WavespeedAPIKey:       os.Getenv("WAVESPEED_API_KEY"),
		KieAPIKey:             os.Getenv("KIE_API_KEY"),
		KusaAPIKey:            os.Getenv("KUSA_API_KEY"),
		ProviderSubmitTimeout: time.Second * time.Duration(getEnvInt("PROVIDER_SUBMIT_TIMEOUT_SECONDS", 60)),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:       getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		DefaultLocale:         getEnv("DEFAULT_LOCALE", "en"),
		AllowedOrigins:        splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		DBMaxConns:            int32(getEnvInt("DB_MAX_CONNS", 10)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// CallbackURL returns the full webhook endpoint handed to providers.
func (c *Config) CallbackURL() string {
	return c.WebhookBaseURL + "/api/generation/webhook"
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
