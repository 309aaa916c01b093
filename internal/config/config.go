package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// CategoryNameScope selects which uniqueness rule applies to category
// names. "per_type" allows the same name on an income and an expense
// category; "global" forbids reusing a name across types.
type CategoryNameScope string

const (
	CategoryNamePerType CategoryNameScope = "per_type"
	CategoryNameGlobal  CategoryNameScope = "global"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// JWT
	JWTSecret string

	// Category uniqueness policy
	CategoryNameScope CategoryNameScope
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
	}

	scope := CategoryNameScope(getEnv("CATEGORY_NAME_SCOPE", string(CategoryNamePerType)))
	if scope != CategoryNamePerType && scope != CategoryNameGlobal {
		log.Printf("Warning: invalid CATEGORY_NAME_SCOPE '%s', falling back to per_type\n", scope)
		scope = CategoryNamePerType
	}
	config.CategoryNameScope = scope

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
