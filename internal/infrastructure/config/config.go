// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ProviderCredentials holds the connection material for one external provider
type ProviderCredentials struct {
	Endpoint   string
	APIKey     string
	APISecret  string
	Username   string
	Password   string
	BranchCode string
}

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB (booking sink)
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL (agency reference data)
	PostgresURI string

	// Search
	AdapterTimeout   time.Duration // per-provider search bound
	CacheTTL         time.Duration // freshness window for aggregate results
	CacheWaitTimeout time.Duration // single-flight waiter bound

	// Booking
	DefaultCommissionRate float64

	// Providers
	Amadeus    ProviderCredentials
	Hotelbeds  ProviderCredentials
	Rentalcars ProviderCredentials
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "travelcore"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		AdapterTimeout:   time.Duration(getEnvAsInt("ADAPTER_TIMEOUT", 15)) * time.Second,
		CacheTTL:         time.Duration(getEnvAsInt("CACHE_TTL", 300)) * time.Second,
		CacheWaitTimeout: time.Duration(getEnvAsInt("CACHE_WAIT_TIMEOUT", 20)) * time.Second,

		DefaultCommissionRate: getEnvAsFloat("DEFAULT_COMMISSION_RATE", 0.10),

		Amadeus: ProviderCredentials{
			Endpoint:  getEnv("AMADEUS_ENDPOINT", "https://api.amadeus.com"),
			APIKey:    getEnv("AMADEUS_CLIENT_ID", ""),
			APISecret: getEnv("AMADEUS_CLIENT_SECRET", ""),
		},
		Hotelbeds: ProviderCredentials{
			Endpoint:  getEnv("HOTELBEDS_ENDPOINT", "https://api.hotelbeds.com"),
			APIKey:    getEnv("HOTELBEDS_API_KEY", ""),
			APISecret: getEnv("HOTELBEDS_SECRET", ""),
		},
		Rentalcars: ProviderCredentials{
			Endpoint:   getEnv("RENTALCARS_ENDPOINT", ""),
			Username:   getEnv("RENTALCARS_USERNAME", ""),
			Password:   getEnv("RENTALCARS_PASSWORD", ""),
			BranchCode: getEnv("RENTALCARS_BRANCH", ""),
		},
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
