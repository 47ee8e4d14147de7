package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the complete server configuration
type Config struct {
	API     APIConfig     `koanf:"api"`
	Storage StorageConfig `koanf:"storage"`
	Logging LoggingConfig `koanf:"logging"`
}

// APIConfig holds REST API configuration
type APIConfig struct {
	Port        int          `koanf:"port"`
	CORSOrigins []string     `koanf:"cors_origins"`
	APIKey      APIKeyConfig `koanf:"api_key"`
}

// APIKeyConfig holds API key configuration. An empty hash leaves the API
// open; set one to require Bearer auth on mutating endpoints.
type APIKeyConfig struct {
	Hash      string `koanf:"hash"`
	CreatedAt string `koanf:"created_at"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load loads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Load YAML config
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	// Validate
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional fields
func applyDefaults(cfg *Config) {
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./registry.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// validate checks the configuration for required fields and consistency
func validate(cfg *Config) error {
	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", cfg.API.Port)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
