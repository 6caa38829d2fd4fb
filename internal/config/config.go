// Package config loads the daemon's environment-driven configuration,
// following the same getEnv/getEnvAsInt convention as the original
// station's config package, extended with a duration parser.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every environment-tunable setting the daemon needs at
// startup.
type Config struct {
	// HTTPAddr is the bind address for the minimal push/control HTTP
	// surface (internal/api).
	HTTPAddr string

	// PluginConfigPath points at a JSON file in either of the plugin
	// factory's accepted shapes (single object or array of single-key
	// objects). Empty means "load no plugins."
	PluginConfigPath string

	// FileScanDir is the directory internal/backend/filescan scans for
	// playable audio files at startup. Empty disables the demo backend.
	FileScanDir string

	// Auth settings, passed straight through to internal/auth.Config.
	AuthUsername         string
	AuthPassword         string
	JWTSecret            string
	TokenTTL             time.Duration
	MaxLoginAttempts     int
	LoginWindowSeconds   int

	// ShutdownGrace bounds how long the daemon waits for in-flight HTTP
	// requests to drain before exiting. Plugin teardown is not bounded by
	// it and does not wait for worker goroutines.
	ShutdownGrace time.Duration

	LogLevel string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() *Config {
	return &Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		PluginConfigPath:   getEnv("PLUGIN_CONFIG_PATH", ""),
		FileScanDir:        getEnv("FILESCAN_DIR", ""),
		AuthUsername:       getEnv("AUTH_USERNAME", "admin"),
		AuthPassword:       getEnv("AUTH_PASSWORD", "change-me"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production-please"),
		TokenTTL:           getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		MaxLoginAttempts:   getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
		LoginWindowSeconds: getEnvAsInt("LOGIN_WINDOW_SECONDS", 900),
		ShutdownGrace:      getEnvAsDuration("SHUTDOWN_GRACE", 2*time.Second),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}
