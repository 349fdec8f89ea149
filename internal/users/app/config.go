package app

import (
	"os"
	"strconv"
	"time"

	"github.com/tabwire/userd/pkg/jwtx"
)

type Config struct {
	DatabaseFile   string        // Optional: path to SQLite database file (default: ./users.db)
	PepperFile     string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	SigningKeyFile string        // Optional: path to a 32-byte HMAC signing key; empty means ephemeral
	TokenTTL       time.Duration // Token lifetime (default: 24h)

	SMTPAddr     string // Optional: host:port of the SMTP relay; empty means log-only mail
	SMTPFrom     string // From address for confirmation emails
	SMTPUsername string // Optional: relay credentials
	SMTPPassword string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:   getEnvOrDefault("USERD_DATABASE_FILE", "users.db"),
		PepperFile:     getEnvOrDefault("USERD_PEPPER_FILE", "pepper"),
		SigningKeyFile: os.Getenv("USERD_SIGNING_KEY_FILE"),
		TokenTTL:       getEnvDurationOrDefault("USERD_TOKEN_TTL", jwtx.DefaultTokenTTL),

		SMTPAddr:     os.Getenv("USERD_SMTP_ADDR"),
		SMTPFrom:     getEnvOrDefault("USERD_SMTP_FROM", "no-reply@localhost"),
		SMTPUsername: os.Getenv("USERD_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("USERD_SMTP_PASSWORD"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
