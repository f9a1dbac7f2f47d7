package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Wizard session storage
	Session SessionConfig

	// Photo capture configuration
	Photo PhotoConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`          // debug, info, warn, error
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	EnableMetrics   bool          `env:"ENABLE_METRICS" envDefault:"true"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string        `env:"DATABASE_URL"`
	MaxConnections     int           `env:"DATABASE_MAX_CONNECTIONS" envDefault:"10"`
	MaxIdleConnections int           `env:"DATABASE_MAX_IDLE_CONNECTIONS" envDefault:"5"`
	ConnMaxLifetime    time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// SessionConfig selects where wizard sessions live. An empty RedisURL keeps
// them in process memory.
type SessionConfig struct {
	RedisURL      string        `env:"REDIS_URL"`
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`
}

// PhotoConfig holds captured photo settings
type PhotoConfig struct {
	Size      int `env:"PHOTO_SIZE" envDefault:"512"`
	MaxBytes  int `env:"PHOTO_MAX_BYTES" envDefault:"10485760"`
	MaxPixels int `env:"PHOTO_MAX_PIXELS" envDefault:"16777216"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envDefault:"GET,POST,PUT,PATCH,DELETE,OPTIONS" envSeparator:","`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envDefault:"Content-Type,Authorization,X-Request-ID" envSeparator:","`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.Photo.Size <= 0 {
		return fmt.Errorf("PHOTO_SIZE must be positive")
	}

	if c.Photo.MaxBytes <= 0 {
		return fmt.Errorf("PHOTO_MAX_BYTES must be positive")
	}

	if c.Photo.MaxPixels <= 0 {
		return fmt.Errorf("PHOTO_MAX_PIXELS must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
