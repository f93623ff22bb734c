package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	OTLP   OTLPConfig
}

type ServerConfig struct {
	Port string
	Host string
}

// StoreConfig selects the persistence backend. Driver is one of memory,
// sqlite, postgres or mongo.
type StoreConfig struct {
	Driver        string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
}

type OTLPConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
}

// LoadConfig loads configuration from environment variables. Variables
// from a .env file in the working directory fill in anything not already
// set.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	enabled, err := strconv.ParseBool(getEnv("OTEL_EXPORTER_OTLP_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("OTEL_EXPORTER_OTLP_ENABLED: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "3500"),
		},
		Store: StoreConfig{
			Driver:        getEnv("STORE_DRIVER", "memory"),
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
			MongoDatabase: getEnv("MONGO_DATABASE", "catalog"),
		},
		OTLP: OTLPConfig{
			Enabled:     enabled,
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "catalog-api"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
		},
	}

	switch cfg.Store.Driver {
	case "memory", "sqlite", "postgres", "mongo":
	default:
		return nil, fmt.Errorf("STORE_DRIVER %q is not one of memory, sqlite, postgres, mongo", cfg.Store.Driver)
	}
	if cfg.Store.Driver == "postgres" && cfg.Store.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres driver")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
