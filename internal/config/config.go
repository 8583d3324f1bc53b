package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database (Supabase Postgres)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Supabase session tokens: HS256 secret, or a JWKS endpoint for asymmetric keys
	SupabaseJWTSecret string
	SupabaseJWKSURL   string

	// Text generation
	OpenAIAPIKey  string
	OpenAIAPIURL  string
	OpenAIModel   string
	AITemperature float64
	AIMaxTokens   int
	AITimeout     time.Duration

	// Billing
	StripeSecretKey     string
	StripeWebhookSecret string
	AppURL              string
	PriceCatalogPath    string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string

	LogRetentionDays int
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),

		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseJWKSURL:   getEnv("SUPABASE_JWKS_URL", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL:  getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		AITemperature: parseFloat(getEnv("AI_TEMPERATURE", "0.8"), 0.8),
		AIMaxTokens:   parseInt(getEnv("AI_MAX_TOKENS", "1500"), 1500),
		AITimeout:     parseDuration(getEnv("AI_TIMEOUT", "60s")),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		AppURL:              getEnv("APP_URL", "http://localhost:3000"),
		PriceCatalogPath:    getEnv("PRICE_CATALOG_PATH", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// HasSessionVerifier reports whether incoming session tokens can be checked.
func (c *Config) HasSessionVerifier() bool {
	return c.SupabaseJWTSecret != "" || c.SupabaseJWKSURL != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
