package config

import (
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Database     *DatabaseConfig
	Auth         *AuthConfig
	PageSize     int
	DebugEnabled bool
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	BasicAuthUser string
	BasicAuthPass string
}

// LoadConfig loads configuration from environment variables.
// A .env file is automatically loaded via the godotenv autoload import.
func LoadConfig() *Config {
	return &Config{
		Database: &DatabaseConfig{
			Driver: getEnvWithDefault("SERVICEREPO_DRIVER", "sqlite3"),
			DSN:    getEnvWithDefault("SERVICEREPO_DSN", ":memory:"),
		},
		Auth: &AuthConfig{
			BasicAuthUser: getEnvWithDefault("SERVICEREPO_BASIC_AUTH_USER", "admin"),
			BasicAuthPass: getEnvWithDefault("SERVICEREPO_BASIC_AUTH_PASS", "admin123"),
		},
		PageSize:     getIntEnvWithDefault("SERVICEREPO_PAGE_SIZE", 10),
		DebugEnabled: getBoolEnvWithDefault("DEBUG", false),
	}
}

// LoadAuthConfig loads only authentication configuration
func LoadAuthConfig() *AuthConfig {
	return LoadConfig().Auth
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an integer environment variable with a default fallback
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// getBoolEnvWithDefault gets a boolean environment variable with a default fallback
func getBoolEnvWithDefault(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
