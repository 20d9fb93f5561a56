package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/yukikurage/productivity-api/internal/constants"
)

// DefaultJWTSecret is a development placeholder. Tokens signed with it can be
// forged by anyone who has read this file.
const DefaultJWTSecret = "default-secret-key-change-me"

type Config struct {
	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	SQLitePath      string
	JWTSecret       string
	JWTTTL          time.Duration
	GinMode         string
	HTTPPort        string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogEncoding     string
	OpenAIAPIKey    string
	OpenAIModel     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBDriver:        getEnv("DB_DRIVER", "mysql"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "3306"),
		DBUser:          getEnv("DB_USER", "taskuser"),
		DBPassword:      getEnv("DB_PASSWORD", "taskpassword"),
		DBName:          getEnv("DB_NAME", "productivity"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		SQLitePath:      getEnv("SQLITE_PATH", "productivity.db"),
		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:          getDuration("JWT_TTL", constants.DefaultTokenTTL),
		GinMode:         getEnv("GIN_MODE", "debug"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogEncoding:     getEnv("LOG_ENCODING", "json"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),
	}
}

// UsesDefaultJWTSecret reports whether JWT_SECRET was left unset.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDuration parses a Go duration string, falling back on empty or invalid input.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
