package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPublicPrefixes are the route prefixes that bypass the auth gate.
var DefaultPublicPrefixes = []string{
	"/auth/sign-up",
	"/auth/sign-in",
	"/auth/refresh-token",
	"/health",
	"/metrics",
}

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisAddr  string

	// JWTSecret signs both token kinds. Supplied through the environment;
	// when unset a random per-process secret is generated, which means
	// tokens do not survive a restart.
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	PublicPrefixes []string
	// RequireOwner makes logout reject callers other than the target user.
	RequireOwner bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		ServerAddr:     getEnvOrDefault("SERVER_ADDR", ":8080"),
		DBHost:         getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:         getEnvOrDefault("DB_PORT", "5432"),
		DBUser:         getEnvOrDefault("DB_USER", "userbase"),
		DBPassword:     getEnvOrDefault("DB_PASSWORD", "userbase_dev_password"),
		DBName:         getEnvOrDefault("DB_NAME", "userbase"),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", generateDefaultSecret()),
		AccessTTL:      getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:     getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		PublicPrefixes: getEnvList("AUTH_PUBLIC_PREFIXES", DefaultPublicPrefixes),
		RequireOwner:   getEnvBool("AUTH_REQUIRE_OWNER", true),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func generateDefaultSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "dev-secret-change-in-production"
	}
	return hex.EncodeToString(bytes)
}
