package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// HTTP surface
	CORSAllowOrigins []string
	PipelineAPIKey   string
	EnablePprof      bool

	// SeedDefaultCategories creates the shared default categories at startup.
	SeedDefaultCategories bool

	// Rollover client
	APIURL         string
	RequestTimeout time.Duration
}

var appConfig *Config

const defaultCORSOrigins = "http://localhost:5173 http://localhost:5174 http://localhost:5175 http://localhost:3000"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	env := getEnv("ENV", "development")

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  env,

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budgetbuddy"),
		DBPassword: getEnv("DB_PASSWORD", "budgetbuddy"),
		DBName:     getEnv("DB_NAME", "budgetbuddy"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		CORSAllowOrigins: strings.Fields(getEnv("CORS_ALLOW_ORIGINS", defaultCORSOrigins)),
		PipelineAPIKey:   getEnv("PIPELINE_API_KEY", ""),
		EnablePprof:      getBool("ENABLE_PPROF", false),

		// Seeding is on by default everywhere except production.
		SeedDefaultCategories: getBool("SEED_DEFAULT_CATEGORIES", env != "production"),

		APIURL: strings.TrimRight(getEnv("BUDGETBUDDY_API_URL", "http://localhost:8080"), "/"),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)
	config.RequestTimeout = getDuration("REQUEST_TIMEOUT", 30*time.Second)

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

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
