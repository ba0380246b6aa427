package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"rowdybuddy/pkg/firestore"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string
	RedisURL       string

	// Document store service account, loaded once at process start
	FirestoreProjectID    string
	FirestorePrivateKeyID string
	FirestorePrivateKey   string
	FirestoreClientEmail  string
	// FirestoreBaseURL overrides the derived resource root, used to point
	// the service at an emulator
	FirestoreBaseURL string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		RedisURL:       getEnv("REDIS_URL", ""),

		FirestoreProjectID:    getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestorePrivateKeyID: getEnv("FIRESTORE_PRIVATE_KEY_ID", ""),
		FirestorePrivateKey:   getEnv("FIRESTORE_PRIVATE_KEY", ""),
		FirestoreClientEmail:  getEnv("FIRESTORE_CLIENT_EMAIL", ""),
		FirestoreBaseURL:      getEnv("FIRESTORE_BASE_URL", ""),
	}

	if cfg.FirestoreProjectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required")
	}

	return cfg, nil
}

// FirestoreCredentials assembles the service account credentials for the
// document store client
func (c *Config) FirestoreCredentials() firestore.Credentials {
	return firestore.Credentials{
		ProjectID:    c.FirestoreProjectID,
		PrivateKeyID: c.FirestorePrivateKeyID,
		PrivateKey:   c.FirestorePrivateKey,
		ClientEmail:  c.FirestoreClientEmail,
	}
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
