package config

import (
	"os"
	"strconv"

	"transientfit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
	Sampler  SamplerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	Host    string
	Port    int
	User    string
	Name    string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// PathConfig holds file system paths
type PathConfig struct {
	PriorDir string
	OutDir   string
	DataFile string
}

// SamplerConfig holds sampler defaults applied when a request leaves them unset
type SamplerConfig struct {
	NLive int
	Walks int
	Seed  int64
}

// Load reads configuration from environment variables and validates it.
// DATABASE_URL may be empty; persistence is optional and the API falls back
// to an in-process store.
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Paths:    loadPathConfig(),
		Sampler:  loadSamplerConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		Host:    getEnvOrDefault("DB_HOST", ""),
		Port:    getEnvIntOrDefault("DB_PORT", 5432),
		User:    getEnvOrDefault("DB_USER", ""),
		Name:    getEnvOrDefault("DB_NAME", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		PriorDir: getEnvOrDefault("PRIOR_DIR", "./priors"),
		OutDir:   getEnvOrDefault("OUT_DIR", "./outdir"),
		DataFile: getEnvOrDefault("DATA_FILE", ""),
	}
}

func loadSamplerConfig() SamplerConfig {
	return SamplerConfig{
		NLive: getEnvIntOrDefault("SAMPLER_NLIVE", 1000),
		Walks: getEnvIntOrDefault("SAMPLER_WALKS", 200),
		Seed:  int64(getEnvIntOrDefault("SAMPLER_SEED", 0)),
	}
}

func validateConfig(config *Config) error {
	if config.Paths.PriorDir == "" {
		return errors.ConfigInvalid("prior directory is required")
	}
	if config.Paths.OutDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Sampler.NLive <= 0 {
		return errors.ConfigInvalid("SAMPLER_NLIVE must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
