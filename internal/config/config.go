package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
// `required:"true"` makes an environment variable mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // e.g., debug, info, warn, error
	HttpServer ServerConfig
	Postgres   PostgresConfig
	Auth       AuthConfig
	Ingest     IngestConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"JWT_TOKEN_TTL" default:"24h"`
}

// IngestConfig holds dealer price-list ingestion settings.
type IngestConfig struct {
	// ExpectedFilename is the only upload filename the excel endpoint accepts.
	ExpectedFilename string `envconfig:"INGEST_EXPECTED_FILENAME" default:"WW_dealers.xlsx"`
	// Workers bounds the number of concurrent upserts per ingested sheet.
	Workers int `envconfig:"INGEST_WORKERS" default:"8"`
}

// PostgresConfig holds PostgreSQL database connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName   string `envconfig:"POSTGRES_DBNAME" required:"true"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

var cfg Config

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	log.Println("Loading service configuration...")
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}

// Get returns the loaded configuration.
// Panics if Load() has not been called successfully.
func Get() *Config {
	if cfg.Postgres.Host == "" { // Simple check to see if cfg is populated
		log.Fatal("Configuration has not been loaded. Call config.Load() first.")
	}
	return &cfg
}
