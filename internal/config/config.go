package config

import (
	"log"
	"os"
	"strconv"
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

	// Scheduler trigger
	PipelineAPIKey string

	// Generation engine
	RecurringWorkers int

	// Hub settings
	HubSettingsCacheTTL time.Duration

	// Notifications
	AMQPURL          string
	AMQPExchange     string
	AMQPRoutingKey   string
	NotifyWebhookURL string

	// Error reporting (worker)
	SentryDSN string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "hubledger"),
		DBPassword: getEnv("DB_PASSWORD", "hubledger"),
		DBName:     getEnv("DB_NAME", "hubledger"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),

		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "hubledger.notifications"),
		AMQPRoutingKey:   getEnv("AMQP_ROUTING_KEY", "notifications"),
		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	config.RecurringWorkers = getEnvInt("RECURRING_WORKERS", 4)
	if config.RecurringWorkers < 1 {
		log.Printf("Warning: RECURRING_WORKERS must be at least 1, got %d; using 1\n", config.RecurringWorkers)
		config.RecurringWorkers = 1
	}

	ttlStr := getEnv("HUB_SETTINGS_CACHE_TTL", "5m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		log.Printf("Warning: invalid HUB_SETTINGS_CACHE_TTL value '%s', falling back to 5m\n", ttlStr)
		ttl = 5 * time.Minute
	}
	config.HubSettingsCacheTTL = ttl

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

// getEnvInt parses an integer environment variable, warning and returning
// the default when it is malformed.
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
