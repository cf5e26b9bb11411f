package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	// Store selects the persistence backend: "postgres" or "memory".
	Store string

	JWTSecret      string
	CronSecret     string
	AllowedOrigins []string
	DemoMode       bool

	LogLevel  string
	LogFormat string

	GeminiAPIKey  string
	GeminiModel   string
	ModelTimeout  time.Duration
	ResendAPIKey  string
	EmailFrom     string
	EmailTimeout  time.Duration
	RedisAddr     string
	RateLimitHour int

	CacheMaxItems int64
}

func Load() (Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		Store:          strings.ToLower(getEnv("STORE", "postgres")),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		CronSecret:     getEnv("CRON_SECRET", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		DemoMode:       getEnvBool("DEMO_MODE", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ModelTimeout:   getEnvDuration("MODEL_TIMEOUT", 60*time.Second),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "CashlyticAI <onboarding@resend.dev>"),
		EmailTimeout:   getEnvDuration("EMAIL_TIMEOUT", 10*time.Second),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RateLimitHour:  getEnvInt("RATE_LIMIT_PER_HOUR", 10),
		CacheMaxItems:  int64(getEnvInt("CACHE_MAX_ITEMS", 10000)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimitHour <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_HOUR must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
