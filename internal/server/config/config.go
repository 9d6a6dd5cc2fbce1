package config

import (
	"os"
	"strconv"
	"time"

	"drive/internal/core"
	"drive/internal/theme"
)

type Config struct {
	Port                   string
	BaseURL                string
	DatabaseURL            string
	TreeFile               string
	RootLabel              string
	DefaultTheme           theme.Theme
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	RateLimitRPS           float64
	RateLimitBurst         int
	StrictNavigation       bool
	NestedNavigation       bool
}

func Load() *Config {
	defaultTheme, ok := theme.Parse(getEnv("DEFAULT_THEME", string(theme.Light)))
	if !ok {
		defaultTheme = theme.Light
	}

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		BaseURL:                getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""), // empty disables the catalogue
		TreeFile:               getEnv("TREE_FILE", ""),
		RootLabel:              getEnv("ROOT_LABEL", core.DefaultRootLabel),
		DefaultTheme:           defaultTheme,
		SessionTTL:             getEnvMinutes("SESSION_TTL_MINUTES", 60*time.Minute),
		SessionCleanupInterval: getEnvMinutes("SESSION_CLEANUP_INTERVAL_MINUTES", 5*time.Minute),
		RateLimitRPS:           getEnvFloat64("RATE_LIMIT_RPS", 10),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		StrictNavigation:       getEnvBool("STRICT_NAVIGATION", false),
		NestedNavigation:       getEnvBool("NESTED_NAVIGATION", false),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat64(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMinutes(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if minutes, err := strconv.ParseFloat(val, 64); err == nil {
			return time.Duration(minutes * float64(time.Minute))
		}
	}
	return fallback
}
