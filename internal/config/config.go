package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Backend
	CommonAPIURL string
	AccessToken  string
	UserRole     string // member, admin or investor
	HTTPTimeout  time.Duration
	SubmitDelay  time.Duration // pacing before each batch submission

	// Storage
	StorageType string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// Logging
	Verbose bool
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom()
}

// LoadFrom loads the given .env files (or ".env" when none are given) and then
// reads the configuration from the environment
func LoadFrom(files ...string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load(files...)

	httpTimeout, err := getDuration("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	submitDelay, err := getDuration("SUBMIT_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		CommonAPIURL: strings.TrimRight(getEnv("COMMON_API_URL", "http://localhost:8081"), "/"),
		AccessToken:  getEnv("ACCESS_TOKEN", ""),
		UserRole:     getEnv("USER_ROLE", "member"),
		HTTPTimeout:  httpTimeout,
		SubmitDelay:  submitDelay,
		StorageType:  getEnv("STORAGE_TYPE", "sqlite"),
		SQLitePath:   getEnv("SQLITE_PATH", "./console.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),
		APIPort:      getEnv("API_PORT", "8080"),
		APIHost:      getEnv("API_HOST", "localhost"),
		Verbose:      getBool("LOG_VERBOSE", false),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, &ConfigError{Field: key, Message: "must be a non-negative duration such as 2s or 500ms"}
	}
	return d, nil
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.StorageType != "sqlite" && c.StorageType != "postgres" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	return nil
}

// ValidateBackend checks the settings needed to talk to the authenticated backend
func (c *Config) ValidateBackend() error {
	if c.CommonAPIURL == "" {
		return &ConfigError{Field: "COMMON_API_URL", Message: "backend URL is required"}
	}
	if c.AccessToken == "" {
		return &ConfigError{Field: "ACCESS_TOKEN", Message: "access token is required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
